package core

import "time"

// YearChoices is how many years the year selector offers.
const YearChoices = 5

// monthNames are the long month names of the es-ES locale.
var monthNames = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

type (
	// Selection is the month/year pair the gallery is filtered by.
	Selection struct {
		Month int // 1-12
		Year  int
	}

	// MonthOption is one entry of the month selector.
	MonthOption struct {
		Value int
		Label string
	}
)

// MonthName returns the es-ES long name of month m, or "" when m is not 1-12.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// Months returns the twelve month options in calendar order.
func Months() []MonthOption {
	out := make([]MonthOption, 0, len(monthNames))
	for i, name := range monthNames {
		out = append(out, MonthOption{Value: i + 1, Label: name})
	}
	return out
}

// Years returns the current year of now followed by the preceding ones,
// YearChoices entries in total.
func Years(now time.Time) []int {
	out := make([]int, 0, YearChoices)
	for i := 0; i < YearChoices; i++ {
		out = append(out, now.Year()-i)
	}
	return out
}

// DefaultSelection is the current calendar month and year of now.
func DefaultSelection(now time.Time) Selection {
	return Selection{Month: int(now.Month()), Year: now.Year()}
}

// Normalize replaces an out-of-range month or a non-positive year with
// the value from DefaultSelection(now). Years outside Years(now) are kept.
func (s Selection) Normalize(now time.Time) Selection {
	def := DefaultSelection(now)
	if s.Month < 1 || s.Month > 12 {
		s.Month = def.Month
	}
	if s.Year < 1 {
		s.Year = def.Year
	}
	return s
}
