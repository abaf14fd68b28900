// Package provider holds the fixed table of LLM vendors a rating can be
// requested from.
package provider

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/config"
)

// API identifies the wire protocol spoken by a provider's endpoint.
type API string

const (
	APIChatCompletions   API = "chat_completions"
	APIAnthropicMessages API = "anthropic_messages"
)

// Provider is one selectable LLM vendor. An empty Endpoint marks a provider
// that is offered but not wired up yet.
type Provider struct {
	Name     string
	Endpoint string
	Model    string
	API      API
	Headers  HeaderBuilder
}

// Configured reports whether the provider has an endpoint to call.
func (p Provider) Configured() bool {
	return p.Endpoint != ""
}

// Defaults returns the built-in provider table.
func Defaults() []Provider {
	return []Provider{
		{
			Name:     "OpenAI",
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			API:      APIChatCompletions,
			Headers:  BearerHeaders{},
		},
		{
			Name:     "Groq",
			Endpoint: "https://api.groq.com/openai/v1/chat/completions",
			Model:    "llama-3.1-8b-instant",
			API:      APIChatCompletions,
			Headers:  BearerHeaders{},
		},
		{
			Name:     "Together AI",
			Endpoint: "https://api.together.xyz/v1/chat/completions",
			Model:    "mistralai/Mixtral-8x7B-Instruct-v0.1",
			API:      APIChatCompletions,
			Headers:  BearerHeaders{},
		},
		{
			Name:     "Anthropic",
			Endpoint: "https://api.anthropic.com/v1/messages",
			Model:    "claude-haiku-4-5-20251001",
			API:      APIAnthropicMessages,
			Headers:  AnthropicHeaders{Version: "2023-06-01"},
		},
		{
			// Offered in the selector; no endpoint yet.
			Name:    "Gemini",
			Model:   "gemini-1.5-flash",
			API:     APIChatCompletions,
			Headers: BearerHeaders{},
		},
	}
}

// ApplyOverrides returns a copy of ps with endpoint and model overrides from
// configuration applied. Overrides for unknown names are logged and ignored.
func ApplyOverrides(ps []Provider, overrides map[string]config.ProviderOverride) []Provider {
	out := make([]Provider, len(ps))
	copy(out, ps)

	for name, o := range overrides {
		_, idx, ok := lo.FindIndexOf(out, func(p Provider) bool { return Key(p.Name) == Key(name) })
		if !ok {
			zap.L().Warn("provider: override for unknown provider ignored", zap.String("provider", name))
			continue
		}
		if o.Endpoint != "" {
			out[idx].Endpoint = o.Endpoint
		}
		if o.Model != "" {
			out[idx].Model = o.Model
		}
	}
	return out
}

// Key normalizes a provider name for lookup.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry is a read-only provider lookup keyed by name.
type Registry struct {
	byKey map[string]Provider
	names []string
}

// NewRegistry builds a Registry. Later entries with a duplicate name replace
// earlier ones but keep the earlier position.
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{byKey: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		k := Key(p.Name)
		if _, dup := r.byKey[k]; !dup {
			r.names = append(r.names, p.Name)
		}
		r.byKey[k] = p
	}
	return r
}

// Get looks a provider up by name, ignoring case and surrounding space.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byKey[Key(name)]
	return p, ok
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// All returns the providers in registration order.
func (r *Registry) All() []Provider {
	return lo.Map(r.names, func(n string, _ int) Provider { return r.byKey[Key(n)] })
}
