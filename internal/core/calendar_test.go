package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthName(t *testing.T) {
	assert.Equal(t, "enero", MonthName(1))
	assert.Equal(t, "septiembre", MonthName(9))
	assert.Equal(t, "diciembre", MonthName(12))
	assert.Empty(t, MonthName(0))
	assert.Empty(t, MonthName(13))
}

func TestMonths(t *testing.T) {
	ms := Months()

	require.Len(t, ms, 12)
	assert.Equal(t, MonthOption{Value: 1, Label: "enero"}, ms[0])
	assert.Equal(t, MonthOption{Value: 12, Label: "diciembre"}, ms[11])
}

func TestYears(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, []int{2026, 2025, 2024, 2023, 2022}, Years(now))
}

func TestSelectionNormalize(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   Selection
		want Selection
	}{
		{"kept", Selection{Month: 6, Year: 2024}, Selection{Month: 6, Year: 2024}},
		{"old year kept", Selection{Month: 1, Year: 1999}, Selection{Month: 1, Year: 1999}},
		{"zero value", Selection{}, Selection{Month: 10, Year: 2026}},
		{"month out of range", Selection{Month: 13, Year: 2025}, Selection{Month: 10, Year: 2025}},
		{"negative year", Selection{Month: 3, Year: -1}, Selection{Month: 3, Year: 2026}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(now))
		})
	}
}
