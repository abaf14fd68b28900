// Package rating asks an LLM provider how well a lead's comment matches the
// company's services and turns the answer into a 0-3 rating.
package rating

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Rating is a lead's qualification score. Lower non-zero values are better.
type Rating int

const (
	// Empty marks a lead with no comment to rate.
	Empty Rating = 0
	// High means more than half of the services match the comment.
	High Rating = 1
	// Medium means 25-50% of the services match.
	Medium Rating = 2
	// Low means under 25% match, the comment is irrelevant, or rating failed.
	Low Rating = 3
)

func (r Rating) String() string {
	return strconv.Itoa(int(r))
}

// Fallback is returned for every failure.
const Fallback = Low

var (
	// ErrUnknownProvider is returned for a provider name not in the registry.
	ErrUnknownProvider = eris.New("rating: unknown provider")
	// ErrUnconfiguredProvider is returned for a registered provider with no endpoint.
	ErrUnconfiguredProvider = eris.New("rating: provider has no endpoint configured")
	// ErrMissingAPIKey is returned by RateAll when no key was supplied.
	ErrMissingAPIKey = eris.New("rating: api key is required")
)

// ProviderError wraps a failed request to a provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("rating: provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError reports model output that is not a single rating digit.
type ParseError struct {
	Content string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rating: unparseable response %q", e.Content)
}

// ParseRating accepts exactly one of "0", "1", "2" or "3" after trimming
// surrounding whitespace.
func ParseRating(content string) (Rating, error) {
	s := strings.TrimSpace(content)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '3' {
		return Rating(s[0] - '0'), nil
	}
	return Fallback, &ParseError{Content: content}
}

const promptTemplate = `You are qualifying a sales lead for a company that offers these services: %s.

Lead comment: %s
Lead email domain: %s

Rate how well the lead's needs match the services:
1 - more than 50%% of the services are relevant to the comment
2 - between 25%% and 50%% of the services are relevant
3 - less than 25%% are relevant, or the comment is irrelevant
0 - the comment is missing

Respond with only a single digit (0, 1, 2, or 3) and no explanation.`

// BuildPrompt renders the rating prompt. The comment is included verbatim.
func BuildPrompt(services []string, comment, domain string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(services, ", "), comment, domain)
}
