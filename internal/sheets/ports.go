package sheets

import (
	"context"

	"swingtube/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordReader loads the full list of gallery records from a feed.
	RecordReader interface {
		// ReadRecords returns every record of the feed in file order.
		ReadRecords(ctx context.Context) ([]core.Record, error)
	}
)
