// Package lead maps uploaded spreadsheet columns onto the canonical lead
// schema and derives each lead's email domain.
package lead

import (
	"fmt"
	"strings"
)

// Canonical column names.
const (
	ColName        = "Name"
	ColEmail       = "Email"
	ColDesignation = "Designation"
	ColComment     = "Comment"
	ColOthers      = "Others"
	ColDomain      = "Domain"
)

// Lead is one uploaded row. Row is its 1-based position among the data rows
// and is the only identity a lead has.
type Lead struct {
	Row         int               `json:"row"`
	Name        string            `json:"name,omitempty"`
	Email       string            `json:"email"`
	Designation string            `json:"designation,omitempty"`
	Comment     string            `json:"comment"`
	Others      string            `json:"others,omitempty"`
	Domain      string            `json:"domain"`
	Extra       map[string]string `json:"extra,omitempty"`

	values []string
}

// Values returns the lead's cells aligned with Dataset.Columns.
func (l Lead) Values() []string {
	return l.values
}

// Dataset is the normalized table: renamed columns, with Domain appended,
// and one Lead per data row.
type Dataset struct {
	Columns []string `json:"columns"`
	Leads   []Lead   `json:"leads"`
}

// MissingColumnError reports required canonical columns that no uploaded
// header mapped onto.
type MissingColumnError struct {
	Missing []string
}

func (e *MissingColumnError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, col := range e.Missing {
		parts[i] = fmt.Sprintf("%s (e.g. %q)", col, exampleHeader[col])
	}
	return "lead: expected column missing: " + strings.Join(parts, ", ")
}

var exampleHeader = map[string]string{
	ColEmail:   "Business email id",
	ColComment: "Comment",
}
