package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"subdomain", "a.b@sub.example.com", "sub.example.com"},
		{"no_at", "no-at-sign", ""},
		{"trailing_junk", "ada@acme.io>", "acme.io"},
		{"angle_brackets", "Ada <ada@acme-corp.co.uk>", "acme-corp.co.uk"},
		{"stops_at_invalid", "x@foo_bar.com", "foo"},
		{"nothing_after_at", "x@", ""},
		{"only_invalid_after_at", "x@!!", ""},
		{"skips_to_valid_at", "x@ y@z.io", "z.io"},
		{"nil", nil, ""},
		{"number", 42, ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.in))
		})
	}
}
