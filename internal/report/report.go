// Package report renders normalized leads and their ratings.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/lead"
	"github.com/sells-group/lead-qualifier/internal/rating"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// maxCellWidth truncates long cells in table output.
const maxCellWidth = 50

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", eris.Errorf("report: unsupported format %q", s)
	}
}

// RatingColumns are the columns of a ratings table.
var RatingColumns = []string{lead.ColName, lead.ColEmail, lead.ColDomain, "Rating"}

// RatingRow is one line of a ratings table.
type RatingRow struct {
	Row    int           `json:"row"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Domain string        `json:"domain"`
	Rating rating.Rating `json:"rating"`
}

// RatingRows flattens results into ratings table rows.
func RatingRows(results []rating.Result) []RatingRow {
	rows := make([]RatingRow, len(results))
	for i, r := range results {
		rows[i] = RatingRow{
			Row:    r.Lead.Row,
			Name:   r.Lead.Name,
			Email:  r.Lead.Email,
			Domain: r.Lead.Domain,
			Rating: r.Rating,
		}
	}
	return rows
}

// PreviewRows returns one row of cells per lead, aligned with ds.Columns.
func PreviewRows(ds *lead.Dataset) [][]string {
	rows := make([][]string, len(ds.Leads))
	for i, l := range ds.Leads {
		rows[i] = l.Values()
	}
	return rows
}

// WritePreview renders every normalized column plus Domain.
func WritePreview(w io.Writer, ds *lead.Dataset, format Format) error {
	switch format {
	case FormatTable:
		return writeTable(w, ds.Columns, PreviewRows(ds))
	case FormatCSV:
		return writeCSV(w, ds.Columns, PreviewRows(ds))
	case FormatJSON:
		out := make([]map[string]string, len(ds.Leads))
		for i, l := range ds.Leads {
			m := make(map[string]string, len(ds.Columns))
			for j, c := range ds.Columns {
				m[c] = l.Values()[j]
			}
			out[i] = m
		}
		return writeJSON(w, out)
	default:
		return eris.Errorf("report: unsupported format %q", format)
	}
}

// WriteRatings renders Name, Email, Domain and Rating per lead.
func WriteRatings(w io.Writer, results []rating.Result, format Format) error {
	rows := RatingRows(results)
	switch format {
	case FormatTable, FormatCSV:
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{r.Name, r.Email, r.Domain, r.Rating.String()}
		}
		if format == FormatCSV {
			return writeCSV(w, RatingColumns, cells)
		}
		return writeTable(w, RatingColumns, cells)
	case FormatJSON:
		return writeJSON(w, rows)
	default:
		return eris.Errorf("report: unsupported format %q", format)
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write CSV header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write CSV row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush CSV")
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = tableCell(c)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return eris.Wrap(tw.Flush(), "report: write table")
}

// tableCell flattens whitespace so a cell stays on one line and truncates it.
func tableCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-3]) + "..."
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "report: write JSON")
}
