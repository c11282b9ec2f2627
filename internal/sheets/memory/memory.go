package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"swingtube/internal/core"
	ports "swingtube/internal/sheets"
)

// Store serves a fixed record list, for local development and tests.
type Store struct {
	mu    sync.Mutex
	items []core.Record
}

// Ensure interface conformance
var _ ports.RecordReader = (*Store)(nil)

func New(records []core.Record) *Store {
	return &Store{items: append([]core.Record(nil), records...)}
}

// NewFromFile parses a CSV seed file in the published-feed format. A file
// without data rows falls back to a small built-in sample; a file that
// cannot be read is an error.
func NewFromFile(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	recs := ports.ParseCSV(string(b))
	if len(recs) == 0 {
		recs = sampleRecords()
	}
	return New(recs), nil
}

// ReadRecords returns a copy of the stored records.
func (s *Store) ReadRecords(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func sampleRecords() []core.Record {
	return []core.Record{
		{Title: "Social Lindy Hop", Month: "1", Year: "2025", URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{Title: "Shim Sham", Month: "1", Year: "2025"},
		{Title: "Balboa Jam", Month: "2", Year: "2025", URL: "https://example.com/videos/balboa.mp4"},
	}
}
