package dashboard

import (
	"bytes"
	"context"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/storage"
	"github.com/andreddluiz/Dash-AOS/internal/store"

	"github.com/rs/zerolog"
)

type JobQueue interface {
	EnqueueImportJob(ctx context.Context, job model.ImportJob) error
}

// Importer schedules spreadsheets for the ingestion worker: the file is
// archived, an import row is created and a job is queued.
type Importer struct {
	storage storage.Storage
	imports store.ImportTracker
	queue   JobQueue
	prefix  string
	log     zerolog.Logger
}

func NewImporter(storage storage.Storage, imports store.ImportTracker, queue JobQueue, prefix string) *Importer {
	return &Importer{
		storage: storage,
		imports: imports,
		queue:   queue,
		prefix:  prefix,
		log:     logger.Component("importer"),
	}
}

func (i *Importer) Schedule(ctx context.Context, fileName string, data []byte) (*model.Import, error) {
	key := storage.ArchiveKey(i.prefix, fileName, time.Now())
	log := i.log.With().Str("file", fileName).Str("key", key).Logger()

	if err := i.storage.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		log.Error().Err(err).Msg("Failed to upload file to storage")
		return nil, err
	}

	id, err := i.imports.CreateImport(ctx, fileName, key)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create import")
		return nil, err
	}

	if err := i.queue.EnqueueImportJob(ctx, model.ImportJob{ImportID: id, S3Path: key}); err != nil {
		log.Error().Err(err).Int64("import_id", id).Msg("Failed to enqueue import job")
		msg := err.Error()
		if uerr := i.imports.UpdateImportStatus(ctx, id, model.ImportStatusParsedFail, 0, &msg); uerr != nil {
			log.Error().Err(uerr).Int64("import_id", id).Msg("Failed to mark import as failed")
		}
		return nil, err
	}

	log.Info().Int64("import_id", id).Msg("Import scheduled")
	return i.imports.GetImport(ctx, id)
}

func (i *Importer) Get(ctx context.Context, id int64) (*model.Import, error) {
	return i.imports.GetImport(ctx, id)
}
