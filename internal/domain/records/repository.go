package records

import (
	"context"
	"time"
)

// Repository is the owner-scoped access path to one record table (expenses
// or incomes). Every read and write takes the owner id; rows belonging to
// other users are unreachable through this interface.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListRecords(ctx context.Context, ownerID string, limit, offset int) ([]Record, int64, error)
	ListAllRecords(ctx context.Context, ownerID string) ([]Record, error)
	GetRecordByID(ctx context.Context, ownerID, recordID string) (*Record, error)
	CreateRecord(ctx context.Context, record *Record) error
	UpdateRecord(ctx context.Context, record *Record) error
	DeleteRecord(ctx context.Context, ownerID, recordID string) (bool, error)
	SearchRecords(ctx context.Context, ownerID, term string) ([]Record, error)
	SummaryByLabel(ctx context.Context, ownerID string, from, to time.Time) (map[string]float64, error)
	Stats(ctx context.Context, ownerID string, from, to time.Time) (Stats, error)
	ListLabels(ctx context.Context) ([]string, error)
}
