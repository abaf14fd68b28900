package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestReadCSV_Basic(t *testing.T) {
	input := "First & Last Name,Business Email ID,Comment\nAda,ada@acme.io,needs staffing\nBob,bob@x.org,\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"First & Last Name", "Business Email ID", "Comment"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "ada@acme.io", tbl.Cell(0, 1))
	assert.Equal(t, "", tbl.Cell(1, 2))
}

func TestReadCSV_VariableFieldsAndBOM(t *testing.T) {
	input := "\ufeffEmail,Comment\nshort@x.io\nlong@x.io,hi,extra\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Email", tbl.Header[0])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Cell(0, 1))
	assert.Equal(t, "extra", tbl.Cell(1, 2))
	assert.Equal(t, "", tbl.Cell(5, 0))
}

func TestReadCSV_SkipsBlankRows(t *testing.T) {
	input := "Email,Comment\n,\na@b.io,x\n , \n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "a@b.io", tbl.Cell(0, 0))
}

func TestReadCSV_Windows1252(t *testing.T) {
	// "José" and a right single quote encoded as Windows-1252.
	input := "Name,Email,Comment\nJos\xe9,jose@acme.es,we\x92re hiring\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "José", tbl.Cell(0, 0))
	assert.Equal(t, "we\u2019re hiring", tbl.Cell(0, 2))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestReadXLSX_Basic(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Business Email ID", "Comment"},
			{"ada@acme.io", "training for staff"},
			{"bob@x.org", ""},
		},
	})

	tbl, err := ReadXLSX(data, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Business Email ID", "Comment"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "training for staff", tbl.Cell(0, 1))
}

func TestReadXLSX_SheetName(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{
		"First":  {{"a", "b"}},
		"Second": {{"x", "y"}, {"1", "2"}},
	})

	tbl, err := ReadXLSX(data, XLSXOptions{SheetName: "Second"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
}

func TestReadXLSX_SheetNameNotFound(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{"Only": {{"a"}}})

	_, err := ReadXLSX(data, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_IndexOutOfRange(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{"Only": {{"a"}}})

	_, err := ReadXLSX(data, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_Corrupt(t *testing.T) {
	_, err := ReadXLSX([]byte("not a zip"), XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open workbook")
}

func TestRead_DispatchByExtension(t *testing.T) {
	tbl, err := Read("Leads.CSV", strings.NewReader("Email,Comment\na@b.io,x\n"))
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	data := createTestXLSX(t, map[string][][]string{"S": {{"Email"}, {"c@d.io"}}})
	tbl, err = Read("leads.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "c@d.io", tbl.Cell(0, 0))

	_, err = Read("leads.pdf", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte("Email,Comment\na@b.io,x\n"), 0o644))

	tbl, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
