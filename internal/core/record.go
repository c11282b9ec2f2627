package core

import (
	"math"
	"strconv"
	"strings"
)

// Column names of the published sheet. They are matched case-sensitively
// against the header row.
const (
	ColumnTitle     = "title"
	ColumnMonth     = "month"
	ColumnYear      = "year"
	ColumnThumbnail = "thumbnail"
	ColumnURL       = "url"
)

// Columns lists the header row the feed is expected to carry.
var Columns = []string{ColumnTitle, ColumnMonth, ColumnYear, ColumnThumbnail, ColumnURL}

// Record is one video entry of the gallery. Every field holds the trimmed
// raw text of its CSV cell.
type Record struct {
	Title     string
	Month     string
	Year      string
	Thumbnail string
	URL       string // empty when the entry has no media
}

// NewRecord builds a Record from a header->value map. Absent columns
// default to the empty string and unknown columns are ignored.
func NewRecord(fields map[string]string) Record {
	return Record{
		Title:     strings.TrimSpace(fields[ColumnTitle]),
		Month:     strings.TrimSpace(fields[ColumnMonth]),
		Year:      strings.TrimSpace(fields[ColumnYear]),
		Thumbnail: strings.TrimSpace(fields[ColumnThumbnail]),
		URL:       strings.TrimSpace(fields[ColumnURL]),
	}
}

// Matches reports whether the record belongs to the given month and year.
func (r Record) Matches(month, year int) bool {
	m, ok := Number(r.Month)
	if !ok || m != float64(month) {
		return false
	}
	y, ok := Number(r.Year)
	return ok && y == float64(year)
}

// Matchable reports whether some selection could ever match the record:
// the month must coerce to a whole number in 1-12 and the year to a whole
// number.
func (r Record) Matchable() bool {
	m, ok := Number(r.Month)
	if !ok || m != math.Trunc(m) || m < 1 || m > 12 {
		return false
	}
	y, ok := Number(r.Year)
	return ok && y == math.Trunc(y)
}

// Number coerces text the way a spreadsheet cell is read as a number:
// surrounding whitespace is ignored and the empty string is zero. The
// boolean is false when the text is not a finite decimal number.
func Number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	// ParseFloat also takes hex floats, underscores and "inf"/"nan" spellings.
	if strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
