package rating

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/lead"
	"github.com/sells-group/lead-qualifier/internal/provider"
	"github.com/sells-group/lead-qualifier/pkg/chatcompletion"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 5
)

// Result is the rating of one lead. Err holds the reason a fallback rating
// was assigned, if any.
type Result struct {
	Lead   lead.Lead `json:"lead"`
	Rating Rating    `json:"rating"`
	Err    error     `json:"-"`
}

// Engine rates leads against a provider registry.
type Engine struct {
	registry   *provider.Registry
	transports map[provider.API]Transport
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransport replaces the transport used for providers speaking api.
func WithTransport(api provider.API, t Transport) Option {
	return func(e *Engine) {
		e.transports[api] = t
	}
}

// New creates an Engine. Requests are paced when cfg.RequestsPerMinute > 0.
func New(reg *provider.Registry, cfg config.RatingConfig, opts ...Option) *Engine {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	e := &Engine{
		registry: reg,
		timeout:  timeout,
		transports: map[provider.API]Transport{
			provider.APIChatCompletions: &ChatTransport{
				Client: chatcompletion.NewClient(chatcompletion.WithTimeout(timeout)),
			},
			provider.APIAnthropicMessages: &AnthropicTransport{MaxTokens: maxTokens, Timeout: timeout},
		},
	}
	if cfg.RequestsPerMinute > 0 {
		e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Attempt rates one lead and reports why a fallback rating was chosen.
// The returned Rating is always valid, even when err is non-nil.
func (e *Engine) Attempt(ctx context.Context, providerName, apiKey string, services []string, comment, domain string) (Rating, error) {
	p, ok := e.registry.Get(providerName)
	if !ok {
		return Fallback, eris.Wrapf(ErrUnknownProvider, "rating: provider %q", providerName)
	}
	if strings.TrimSpace(comment) == "" {
		return Empty, nil
	}
	if !p.Configured() {
		return Fallback, eris.Wrapf(ErrUnconfiguredProvider, "rating: provider %q", p.Name)
	}

	t, ok := e.transports[p.API]
	if !ok {
		return Fallback, &ProviderError{Provider: p.Name, Err: eris.Errorf("no transport for api %q", p.API)}
	}

	prompt := BuildPrompt(services, comment, domain)

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return Fallback, &ProviderError{Provider: p.Name, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	headers := p.Headers
	if headers == nil {
		headers = provider.BearerHeaders{}
	}

	content, err := t.Complete(ctx, p, headers.Build(apiKey), prompt)
	if err != nil {
		return Fallback, &ProviderError{Provider: p.Name, Err: err}
	}

	return ParseRating(content)
}

// Rate rates one lead and never fails: every error becomes Fallback.
func (e *Engine) Rate(ctx context.Context, providerName, apiKey string, services []string, comment, domain string) Rating {
	r, err := e.Attempt(ctx, providerName, apiKey, services, comment, domain)
	if err != nil {
		logFallback(err, zap.String("provider", providerName), zap.String("domain", domain))
	}
	return r
}

// RateAll rates leads one after another in table order. Only a missing key
// stops the batch; per-lead failures are recorded in Result.Err.
func (e *Engine) RateAll(ctx context.Context, providerName, apiKey string, services []string, leads []lead.Lead) ([]Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	results := make([]Result, 0, len(leads))
	for _, l := range leads {
		r, err := e.Attempt(ctx, providerName, apiKey, services, l.Comment, l.Domain)
		if err != nil {
			logFallback(err, zap.String("provider", providerName), zap.Int("row", l.Row))
		}
		results = append(results, Result{Lead: l, Rating: r, Err: err})
	}
	return results, nil
}

func logFallback(err error, fields ...zap.Field) {
	var pe *ParseError
	if errors.As(err, &pe) {
		zap.L().Warn("rating: unparseable model output", append(fields, zap.String("content", pe.Content))...)
		return
	}
	zap.L().Warn("rating: fallback", append(fields, zap.Error(err))...)
}
