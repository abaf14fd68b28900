package sheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// fallbackCharset is assumed for CSV input that is not valid UTF-8, as
// produced by spreadsheet tools exporting with the system code page.
const fallbackCharset = "windows-1252"

// ReadCSV reads a comma-separated upload. Rows may have a variable number of
// fields and quotes are parsed leniently, matching what spreadsheet exports
// tend to produce.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read upload")
	}
	if !utf8.Valid(data) {
		enc, err := htmlindex.Get(fallbackCharset)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: unsupported charset %q", fallbackCharset)
		}
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, eris.Wrap(err, "csv: decode charset")
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		records = append(records, record)
	}

	return fromRecords(records)
}
