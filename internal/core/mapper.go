package core

// mapper.go turns decoded spreadsheet rows into books.
//
// Cells arrive already trimmed and NFC-normalized by the sheet package.
// Column lookup is case-insensitive; unknown columns are ignored.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/bookimport/internal/sheet"
)

// numericRegex validates that a price is a plain decimal after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// groupedRegex matches a number with comma thousands separators.
var groupedRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// MapRow converts one row into a Book.
//
//   - Title is copied verbatim (empty when absent).
//   - Authors is split on every comma; an absent cell yields an empty list.
//   - Description, Category and Publisher default to DefaultText.
//   - Price is parsed as a decimal; absent or unparseable values become 0.
func MapRow(row sheet.Row) Book {
	b, _ := mapRow(row)
	return b
}

// MapRows converts rows in order. The returned slice has the same length.
func MapRows(rows []sheet.Row) []Book {
	books := make([]Book, len(rows))
	for i, r := range rows {
		books[i] = MapRow(r)
	}
	return books
}

// mapRow also returns the raw Price cell when it was present but could not
// be parsed, so callers can log the fallback.
func mapRow(row sheet.Row) (b Book, badPrice string) {
	idx := makeHeaderIndex(row)

	b.Title = idx.get(ColumnTitle)
	b.Authors = SplitAuthors(idx.get(ColumnAuthors))
	b.Description = idx.getOr(ColumnDescription, DefaultText)
	b.Category = idx.getOr(ColumnCategory, DefaultText)
	b.Publisher = idx.getOr(ColumnPublisher, DefaultText)

	if raw := idx.get(ColumnPrice); raw != "" {
		var ok bool
		if b.Price, ok = ParsePrice(raw); !ok {
			badPrice = raw
		}
	}
	return b, badPrice
}

// SplitAuthors splits an Authors cell on every comma. Segments are kept
// verbatim, including surrounding spaces and empty segments. An empty cell
// yields an empty, non-nil list.
func SplitAuthors(cell string) []string {
	if cell == "" {
		return []string{}
	}
	return strings.Split(cell, ",")
}

// ParsePrice converts a price cell to a float. Currency symbols, comma
// thousands separators and accounting parentheses are accepted. A comma in
// any other position (such as a decimal comma in "15,99") makes the value
// non-numeric. The bool is false for values that are not numeric, in which
// case the price is 0.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(strings.NewReplacer("$", "", "€", "", "£", "").Replace(s))
	if strings.Contains(s, ",") {
		if !groupedRegex.MatchString(s) {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// headerIndex maps lowercased column names to cell values.
type headerIndex map[string]string

func makeHeaderIndex(row sheet.Row) headerIndex {
	idx := make(headerIndex, len(row))
	// Exact-case columns win over differently cased duplicates.
	for k, v := range row {
		if isCanonical(k) {
			idx[strings.ToLower(k)] = v
		}
	}
	for k, v := range row {
		key := strings.ToLower(k)
		if _, taken := idx[key]; !taken {
			idx[key] = v
		}
	}
	return idx
}

func isCanonical(name string) bool {
	switch name {
	case ColumnTitle, ColumnAuthors, ColumnDescription, ColumnCategory, ColumnPublisher, ColumnPrice:
		return true
	}
	return false
}

func (h headerIndex) get(column string) string {
	return h[strings.ToLower(column)]
}

func (h headerIndex) getOr(column, fallback string) string {
	if v, ok := h[strings.ToLower(column)]; ok && v != "" {
		return v
	}
	return fallback
}
