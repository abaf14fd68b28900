// Package anthropic wraps anthropic-sdk-go behind a small message client so
// callers can point it at any Messages API endpoint with their own headers.
package anthropic

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// messagesPath is the path the SDK appends to its base URL.
const messagesPath = "v1/messages"

// Client defines the Anthropic API operations used for lead rating.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is our own request type for CreateMessage.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      string
	Messages    []Message
	Temperature *float64
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	ID         string
	Model      string
	Content    []ContentBlock
	StopReason string
	Usage      TokenUsage
}

// ContentBlock represents a block of content in a response.
type ContentBlock struct {
	Type string
	Text string
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Text concatenates the text blocks of the response.
func (r *MessageResponse) Text() string {
	var b strings.Builder
	for _, c := range r.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// Option configures the client.
type Option func(*sdkClient)

// WithEndpoint points the client at a full Messages endpoint URL such as
// https://api.anthropic.com/v1/messages.
func WithEndpoint(endpoint string) Option {
	return func(c *sdkClient) {
		c.baseURL = BaseURL(endpoint)
	}
}

// WithHeader sends the given headers on every request, replacing any the SDK
// would set itself (including the API key header).
func WithHeader(h http.Header) Option {
	return func(c *sdkClient) {
		c.header = h.Clone()
	}
}

// WithHTTPClient overrides the http.Client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *sdkClient) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request, replacing the SDK's MaxTokens-derived
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *sdkClient) {
		c.timeout = d
	}
}

// BaseURL derives the SDK base URL from a full Messages endpoint.
func BaseURL(endpoint string) string {
	return strings.TrimSuffix(strings.TrimRight(endpoint, "/"), messagesPath)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client     sdk.Client
	baseURL    string
	header     http.Header
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new Anthropic client backed by the SDK. Retries are
// disabled; a failed call is reported to the caller once.
func NewClient(opts ...Option) Client {
	c := &sdkClient{}
	for _, o := range opts {
		o(c)
	}

	sdkOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		// Credentials come only from WithHeader, never from the environment.
		option.WithHeaderDel("Authorization"),
		option.WithHeaderDel("X-Api-Key"),
	}
	if c.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(c.httpClient))
	}
	if c.timeout > 0 {
		sdkOpts = append(sdkOpts, option.WithRequestTimeout(c.timeout))
	}
	for k, vs := range c.header {
		for i, v := range vs {
			if i == 0 {
				sdkOpts = append(sdkOpts, option.WithHeader(k, v))
				continue
			}
			sdkOpts = append(sdkOpts, option.WithHeaderAdd(k, v))
		}
	}

	c.client = sdk.NewClient(sdkOpts...)
	return c
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}

	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	return fromSDKMessage(msg), nil
}

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *MessageResponse {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, b := range msg.Content {
		blocks = append(blocks, ContentBlock{
			Type: b.Type,
			Text: b.Text,
		})
	}

	return &MessageResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Content:    blocks,
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
