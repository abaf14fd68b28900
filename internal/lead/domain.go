package lead

import (
	"fmt"
	"regexp"
)

var domainRe = regexp.MustCompile(`@([A-Za-z0-9.-]+)`)

// ExtractDomain returns the host part of an email-like value: the run of
// letters, digits, dots and hyphens after the first "@" that is followed by
// one. Values without such a run yield "".
func ExtractDomain(v any) string {
	if v == nil {
		return ""
	}
	m := domainRe.FindStringSubmatch(fmt.Sprint(v))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
