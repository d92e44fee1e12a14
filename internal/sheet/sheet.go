// Package sheet decodes uploaded spreadsheets into header-keyed rows.
//
// Only the first worksheet of a workbook is read. The first non-blank row is
// the header; every following non-blank row becomes a [Row] keyed by header
// name, holding only the cells that have a value. Supported formats are
// .xlsx (excelize), legacy .xls and .csv.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Format identifies a spreadsheet container format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	// ErrUnsupportedFormat is returned for files that are not xlsx, xls or csv.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

	// ErrNoSheets is returned for workbooks without any worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")
)

// Row maps a header name to the cell value in that column.
// Columns whose cell is blank are absent.
type Row map[string]string

// Sheet is a decoded worksheet.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// gridReader returns the name and raw cell grid of a workbook's first sheet.
type gridReader func(data []byte) (string, [][]string, error)

var readers = map[Format]gridReader{
	FormatXLSX: readXLSX,
	FormatXLS:  readXLS,
	FormatCSV:  readCSV,
}

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat picks the format from the file extension, falling back to the
// file's magic bytes when the extension is missing or unknown.
func DetectFormat(fileName string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, cfbMagic):
		return FormatXLS, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
}

// Decode reads r fully and decodes its first sheet.
func Decode(fileName string, r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	return DecodeBytes(fileName, data)
}

// DecodeBytes decodes the first sheet of an in-memory spreadsheet.
func DecodeBytes(fileName string, data []byte) (*Sheet, error) {
	format, err := DetectFormat(fileName, data)
	if err != nil {
		return nil, err
	}

	name, grid, err := readers[format](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", fileName, format, err)
	}

	return fromGrid(name, grid), nil
}

// fromGrid turns a raw cell grid into header-keyed rows.
func fromGrid(name string, grid [][]string) *Sheet {
	s := &Sheet{Name: name}

	start := -1
	width := 0
	for i, row := range grid {
		if start < 0 && !isBlank(row) {
			start = i
		}
		if len(row) > width {
			width = len(row)
		}
	}
	if start < 0 {
		return s
	}

	s.Columns = headerNames(grid[start], width)

	for _, raw := range grid[start+1:] {
		if isBlank(raw) {
			continue
		}
		row := make(Row, len(raw))
		for i, cell := range raw {
			if v := Clean(cell); v != "" {
				row[s.Columns[i]] = v
			}
		}
		s.Rows = append(s.Rows, row)
	}

	return s
}

// headerNames builds unique column names, padding to width. Blank headers
// become __EMPTY, __EMPTY_1, ... and repeated names get _1, _2 suffixes.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	next := make(map[string]int, width)
	used := make(map[string]bool, width)

	for i := range names {
		base := ""
		if i < len(header) {
			base = Clean(header[i])
		}
		if base == "" {
			base = "__EMPTY"
		}

		name := base
		for n := next[base]; ; n++ {
			if n > 0 {
				name = base + "_" + strconv.Itoa(n)
			}
			if !used[name] {
				next[base] = n + 1
				break
			}
		}
		used[name] = true
		names[i] = name
	}

	return names
}

// Clean trims a cell and normalizes it to Unicode NFC so visually identical
// headers typed on different systems compare equal.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
