// Package store defines the record store collaborator. Implementations hold
// no business logic: the dashboard re-fetches the full set after every
// mutation.
package store

import (
	"context"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

// Adapter is the persistence boundary for AOS records. Every error returned
// is a *errors.StoreError.
type Adapter interface {
	// FetchAll returns every record, newest id first.
	FetchAll(ctx context.Context) ([]model.Record, error)
	// InsertMany stores all records or none. Ids are assigned by the store.
	InsertMany(ctx context.Context, records []model.Record) error
	DeleteOne(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// ImportTracker records the lifecycle of queued spreadsheet imports.
type ImportTracker interface {
	CreateImport(ctx context.Context, fileName, s3Path string) (int64, error)
	UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, recordCount int, errorMessage *string) error
	GetImport(ctx context.Context, id int64) (*model.Import, error)
}
