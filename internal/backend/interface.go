package backend

import (
	"context"
	"time"

	"swingtube/internal/sheets"
)

// Factory creates feed readers based on configuration
type Factory interface {
	// CreateReader creates a reader for the backend named in config
	CreateReader(ctx context.Context, config Config) (sheets.RecordReader, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Published CSV specific
	CSVURL       string
	FetchTimeout time.Duration

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend specific
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	PublishedBackend BackendType = "published"
	SheetsBackend    BackendType = "sheets"
	MemoryBackend    BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case PublishedBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
