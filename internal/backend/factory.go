package backend

import (
	"context"
	"fmt"

	"swingtube/internal/log"
	"swingtube/internal/sheets"
	gsheet "swingtube/internal/sheets/google"
	"swingtube/internal/sheets/memory"
	"swingtube/internal/sheets/published"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentFeed)}
}

// CreateReader implements Factory.CreateReader
func (f *DefaultFactory) CreateReader(ctx context.Context, config Config) (sheets.RecordReader, error) {
	switch config.Type {
	case PublishedBackend:
		return f.createPublishedReader(config)
	case SheetsBackend:
		return f.createSheetsReader(ctx, config)
	case MemoryBackend:
		return f.createMemoryReader(config)
	default:
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublishedReader(config Config) (sheets.RecordReader, error) {
	if config.CSVURL == "" {
		return nil, fmt.Errorf("published backend: missing CSV URL")
	}
	f.logger.Info("Initialized published CSV backend",
		log.FieldBackend, config.Type.String(),
		log.FieldSource, config.CSVURL,
		"fetch_timeout", config.FetchTimeout.String())
	return published.New(config.CSVURL, config.FetchTimeout), nil
}

func (f *DefaultFactory) createSheetsReader(ctx context.Context, config Config) (sheets.RecordReader, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend",
		log.FieldBackend, config.Type.String(),
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"range", config.GoogleSheetRange)
	return cli, nil
}

func (f *DefaultFactory) createMemoryReader(config Config) (sheets.RecordReader, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend",
		log.FieldBackend, config.Type.String(),
		log.FieldSource, config.SeedFile,
		log.FieldRecordCount, store.Len())
	return store, nil
}
