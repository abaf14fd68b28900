// Package sheet reads uploaded lead spreadsheets (CSV or XLSX) into a
// header-plus-rows table.
package sheet

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = eris.New("sheet: unsupported file format")
	// ErrEmptyTable is returned when the file has no header row.
	ErrEmptyTable = eris.New("sheet: file has no header row")
)

// Table is an uploaded spreadsheet: one header row plus data rows.
// Rows may be shorter or longer than Header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value at row i, column j, or "" when the row is short.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Read parses r according to the extension of name.
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "sheet: read upload")
		}
		return ReadXLSX(data, XLSXOptions{})
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "sheet: %q", filepath.Base(name))
	}
}

// Open reads a CSV or XLSX file from disk.
func Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return Read(path, f)
}

// fromRecords splits raw records into a Table, dropping fully blank rows.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Header: header}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
