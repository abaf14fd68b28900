package lead

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-qualifier/internal/sheet"
)

// synonyms maps a normalized header onto its canonical column.
var synonyms = map[string]string{
	"first & last name": ColName,
	"name":              ColName,
	"full name":         ColName,
	"business email id": ColEmail,
	"business email":    ColEmail,
	"email":             ColEmail,
	"email id":          ColEmail,
	"email address":     ColEmail,
	"designation":       ColDesignation,
	"title":             ColDesignation,
	"job title":         ColDesignation,
	"comment":           ColComment,
	"comments":          ColComment,
	"remarks":           ColComment,
	"notes":             ColComment,
	"others":            ColOthers,
	"other":             ColOthers,
}

// NormalizeHeader trims, lowercases and collapses inner whitespace so that
// "Business Email ID", " business  email id " and "BUSINESS EMAIL ID" compare
// equal.
func NormalizeHeader(h string) string {
	lower := cases.Lower(language.Und).String(h)
	return strings.Join(strings.Fields(lower), " ")
}

// Canonical returns the canonical column for header h, if any.
func Canonical(h string) (string, bool) {
	col, ok := synonyms[NormalizeHeader(h)]
	return col, ok
}

// Normalize renames recognized headers, checks that Email and Comment are
// present after renaming, and derives Domain for every row. Unrecognized
// columns pass through under their original header, suffixed when the same
// header text repeats. When two headers map to the same canonical column the
// first one wins.
func Normalize(t *sheet.Table) (*Dataset, error) {
	columns := make([]string, len(t.Header))
	index := make(map[string]int, len(t.Header))
	for j, h := range t.Header {
		col, ok := Canonical(h)
		if _, taken := index[col]; ok && !taken {
			columns[j] = col
			index[col] = j
			continue
		}
		columns[j] = strings.TrimSpace(h)
	}
	uniqueColumns(columns)

	var missing []string
	for _, req := range []string{ColEmail, ColComment} {
		if _, ok := index[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Missing: missing}
	}

	// An uploaded "Domain" column is replaced in place by the derived value.
	domainAt := -1
	for j, c := range columns {
		if c == ColDomain {
			domainAt = j
			break
		}
	}
	if domainAt < 0 {
		columns = append(columns, ColDomain)
		domainAt = len(columns) - 1
	}

	ds := &Dataset{Columns: columns, Leads: make([]Lead, 0, len(t.Rows))}
	for i := range t.Rows {
		values := make([]string, len(columns))
		for j := range t.Header {
			values[j] = t.Cell(i, j)
		}

		l := Lead{
			Row:         i + 1,
			Name:        cell(values, index, ColName),
			Email:       strings.TrimSpace(cell(values, index, ColEmail)),
			Designation: cell(values, index, ColDesignation),
			Comment:     cell(values, index, ColComment),
			Others:      cell(values, index, ColOthers),
		}
		l.Domain = ExtractDomain(l.Email)
		values[domainAt] = l.Domain

		for j, c := range columns {
			if j == domainAt || isCanonical(index, c, j) {
				continue
			}
			if l.Extra == nil {
				l.Extra = make(map[string]string)
			}
			l.Extra[c] = values[j]
		}
		l.values = values

		ds.Leads = append(ds.Leads, l)
	}

	return ds, nil
}

// uniqueColumns suffixes repeated passthrough headers ("Phone", "Phone_2") so
// every column keeps its own key in Extra and in keyed output. Canonical
// columns always come first among equal names and keep theirs.
func uniqueColumns(columns []string) {
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}
	used := make(map[string]bool, len(columns))
	for j, c := range columns {
		if !used[c] {
			used[c] = true
			continue
		}
		for n := 2; ; n++ {
			alt := fmt.Sprintf("%s_%d", c, n)
			if !taken[alt] {
				columns[j] = alt
				taken[alt] = true
				used[alt] = true
				break
			}
		}
	}
}

func cell(values []string, index map[string]int, col string) string {
	j, ok := index[col]
	if !ok {
		return ""
	}
	return values[j]
}

func isCanonical(index map[string]int, col string, j int) bool {
	at, ok := index[col]
	return ok && at == j
}
