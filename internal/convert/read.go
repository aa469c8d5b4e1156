// read.go loads rows from CSV and XLSX exports.
//
// Separated from convert.go so conversion works on plain Rows and never
// cares which spreadsheet format they came from.
//
// Design: The first row is the header. Fully blank rows are skipped, since
// spreadsheet exports routinely pad the end of a sheet with them.

package convert

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoHeader is returned when the input is empty.
var ErrNoHeader = errors.New("missing header row")

// ErrSheetNotFound is returned when a named sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadFile loads rows from a .csv or .xlsx file. sheet selects the XLSX
// sheet; empty means the first one. It is ignored for CSV.
func ReadFile(path, sheet string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data), sheet)
	default:
		return ReadCSV(bytes.NewReader(data))
	}
}

// ReadCSV loads rows from CSV. A UTF-8 byte order mark is stripped.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows(records)
}

// ReadXLSX loads rows from a workbook sheet.
func ReadXLSX(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %s (have %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows(records)
}

// rows keys records by the normalised header. Short records leave trailing
// columns blank.
func rows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = Header(h)
	}

	var out []Row
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		r := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				r[h] = rec[i]
			} else {
				r[h] = ""
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
