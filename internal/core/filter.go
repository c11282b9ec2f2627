package core

// Filter returns the records whose month and year coerce to the given
// values, in input order. The input is never modified.
func Filter(records []Record, month, year int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Matches(month, year) {
			out = append(out, r)
		}
	}
	return out
}

// Malformed counts records that can never match any selection.
func Malformed(records []Record) int {
	n := 0
	for _, r := range records {
		if !r.Matchable() {
			n++
		}
	}
	return n
}
