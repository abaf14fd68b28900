package provider

import "net/http"

// HeaderBuilder builds the request headers a vendor expects from the
// caller-supplied API key.
type HeaderBuilder interface {
	Build(apiKey string) http.Header
}

// BearerHeaders sends the key as an OAuth-style bearer token, as every
// OpenAI-compatible chat-completions endpoint expects.
type BearerHeaders struct{}

// Build implements HeaderBuilder.
func (BearerHeaders) Build(apiKey string) http.Header {
	h := make(http.Header, 2)
	h.Set("Authorization", "Bearer "+apiKey)
	h.Set("Content-Type", "application/json")
	return h
}

// AnthropicHeaders sends the key in x-api-key together with the pinned API
// version.
type AnthropicHeaders struct {
	Version string
}

// Build implements HeaderBuilder.
func (a AnthropicHeaders) Build(apiKey string) http.Header {
	version := a.Version
	if version == "" {
		version = "2023-06-01"
	}
	h := make(http.Header, 3)
	h.Set("X-Api-Key", apiKey)
	h.Set("Anthropic-Version", version)
	h.Set("Content-Type", "application/json")
	return h
}
