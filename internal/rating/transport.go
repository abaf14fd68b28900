package rating

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/provider"
	"github.com/sells-group/lead-qualifier/pkg/anthropic"
	"github.com/sells-group/lead-qualifier/pkg/chatcompletion"
)

// Transport sends one rating prompt to a provider and returns the raw text
// of the model's answer.
type Transport interface {
	Complete(ctx context.Context, p provider.Provider, header http.Header, prompt string) (string, error)
}

// temperature is fixed at zero so repeated runs rate a lead the same way.
var temperature = 0.0

// ChatTransport speaks the OpenAI-compatible chat completions protocol.
type ChatTransport struct {
	Client chatcompletion.Client
}

func (t *ChatTransport) Complete(ctx context.Context, p provider.Provider, header http.Header, prompt string) (string, error) {
	resp, err := t.Client.ChatCompletion(ctx, p.Endpoint, header, chatcompletion.Request{
		Model:       p.Model,
		Messages:    []chatcompletion.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content()
}

// AnthropicTransport speaks the Anthropic Messages API through the SDK. A
// client is built per call since endpoint and key vary per request.
type AnthropicTransport struct {
	MaxTokens int64
	Timeout   time.Duration
	NewClient func(opts ...anthropic.Option) anthropic.Client
}

func (t *AnthropicTransport) Complete(ctx context.Context, p provider.Provider, header http.Header, prompt string) (string, error) {
	newClient := t.NewClient
	if newClient == nil {
		newClient = anthropic.NewClient
	}
	opts := []anthropic.Option{anthropic.WithEndpoint(p.Endpoint), anthropic.WithHeader(header)}
	if t.Timeout > 0 {
		opts = append(opts, anthropic.WithTimeout(t.Timeout))
	}
	client := newClient(opts...)

	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.Model,
		MaxTokens:   t.MaxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", eris.New("rating: anthropic response has no content")
	}
	return resp.Text(), nil
}
