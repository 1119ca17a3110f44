package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/excel"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/storage"
	"github.com/andreddluiz/Dash-AOS/internal/store"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/rs/zerolog"
)

// DeadLetterFunc parks a raw job message for later replay.
type DeadLetterFunc func(ctx context.Context, message []byte) error

// ImportWorker ingests spreadsheets archived in object storage and records
// the outcome on the import row.
type ImportWorker struct {
	records    store.Adapter
	imports    store.ImportTracker
	storage    storage.Storage
	strategy   excel.IngestionStrategy
	pool       *WorkerPool
	deadLetter DeadLetterFunc
	metrics    *metrics.Registry
	log        zerolog.Logger
}

func NewImportWorker(
	records store.Adapter,
	imports store.ImportTracker,
	storage storage.Storage,
	pool *WorkerPool,
	deadLetter DeadLetterFunc,
	m *metrics.Registry,
) *ImportWorker {
	return &ImportWorker{
		records:    records,
		imports:    imports,
		storage:    storage,
		strategy:   excel.NewExcelStrategy(),
		pool:       pool,
		deadLetter: deadLetter,
		metrics:    m,
		log:        logger.Component("import_worker"),
	}
}

// HandleMessage decodes a queued job and hands it to the pool. A full pool
// is reported as retryable so the message is kept.
func (w *ImportWorker) HandleMessage(ctx context.Context, data []byte) error {
	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal import job")
		return err
	}

	w.log.Info().Int64("import_id", job.ImportID).Str("s3_path", job.S3Path).Msg("Processing import job")

	accepted := w.pool.Submit(Job{
		Name: fmt.Sprintf("import-%d", job.ImportID),
		Run: func(ctx context.Context) error {
			err := w.Process(ctx, job)
			if err != nil && errors.IsRetryable(err) && w.deadLetter != nil {
				if dlqErr := w.deadLetter(ctx, data); dlqErr != nil {
					w.log.Error().Err(dlqErr).Int64("import_id", job.ImportID).Msg("Failed to park import job")
				}
			}
			return err
		},
	})
	if !accepted {
		return errors.NewRetryableError(fmt.Errorf("import %d", job.ImportID), "worker pool full")
	}

	return nil
}

// Process runs one import end to end. Download failures are retryable and
// leave the import untouched; parse and store failures mark it PARSED_FAIL.
func (w *ImportWorker) Process(ctx context.Context, job model.ImportJob) error {
	log := w.log.With().Int64("import_id", job.ImportID).Logger()
	start := time.Now()

	log.Debug().Msg("Downloading file from storage")
	reader, err := w.storage.Download(ctx, job.S3Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to download file")
		return errors.NewRetryableError(err, "download failed")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read file data")
		return errors.NewRetryableError(err, "read failed")
	}

	records, err := w.strategy.Parse(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse spreadsheet")
		w.metrics.IngestionFailuresTotal.WithLabelValues("parse").Inc()
		return w.fail(ctx, job.ImportID, err)
	}

	report := w.strategy.Inspect(ctx, records)
	log.Debug().
		Int("rows", report.Rows).
		Int("missing_date", report.MissingDate).
		Int("unknown_range", report.UnknownRange).
		Msg("Spreadsheet inspected")

	if err := w.records.InsertMany(ctx, records); err != nil {
		log.Error().Err(err).Msg("Failed to insert records")
		w.metrics.IngestionFailuresTotal.WithLabelValues("insert").Inc()
		return w.fail(ctx, job.ImportID, err)
	}
	w.metrics.RowsIngestedTotal.Add(float64(len(records)))

	if err := w.imports.UpdateImportStatus(ctx, job.ImportID, model.ImportStatusParsedOK, len(records), nil); err != nil {
		log.Error().Err(err).Msg("Failed to update import status")
		return err
	}

	log.Info().
		Int("record_count", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Import processed successfully")
	return nil
}

func (w *ImportWorker) fail(ctx context.Context, importID int64, cause error) error {
	msg := cause.Error()
	if err := w.imports.UpdateImportStatus(ctx, importID, model.ImportStatusParsedFail, 0, &msg); err != nil {
		w.log.Error().Err(err).Int64("import_id", importID).Msg("Failed to mark import as failed")
	}
	return cause
}
