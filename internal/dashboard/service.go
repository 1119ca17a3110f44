package dashboard

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/excel"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/storage"
	"github.com/andreddluiz/Dash-AOS/internal/store"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// ArchivePrefix is the object key prefix for archived uploads.
	ArchivePrefix string
}

// Service owns the in-memory record set. Callers only ever receive copies;
// every mutation goes through the store and is followed by a full re-fetch.
type Service struct {
	adapter  store.Adapter
	strategy excel.IngestionStrategy
	archive  storage.Storage
	opts     Options
	metrics  *metrics.Registry
	log      zerolog.Logger

	mu      sync.RWMutex
	records []model.Record
	issued  uint64
	applied uint64
	loaded  time.Time
}

// NewService wires the record pipeline. archive may be nil to skip keeping
// original uploads.
func NewService(adapter store.Adapter, archive storage.Storage, m *metrics.Registry, opts Options) *Service {
	return &Service{
		adapter:  adapter,
		strategy: excel.NewExcelStrategy(),
		archive:  archive,
		opts:     opts,
		metrics:  m,
		log:      logger.Component("dashboard"),
		records:  []model.Record{},
	}
}

// Records returns a copy of the current record set.
func (s *Service) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

type Status struct {
	Records  int       `json:"records"`
	Sequence uint64    `json:"sequence"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Status describes the applied record set. LoadedAt is zero before the
// first successful refresh.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Records: len(s.records), Sequence: s.applied, LoadedAt: s.loaded}
}

// Refresh re-fetches every record and replaces the in-memory set. A response
// is applied only if its sequence is newer than the last applied one; a
// response that lost the race to a later refresh is dropped with
// ErrStaleResponse. On failure the previous set is kept.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	start := time.Now()
	records, err := s.adapter.FetchAll(ctx)
	s.observeStore("fetch", start, err)
	if err != nil {
		s.metrics.RefreshesTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Uint64("seq", seq).Msg("Failed to fetch records")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.metrics.RefreshesTotal.WithLabelValues("stale").Inc()
		s.log.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("Discarding stale fetch")
		return errors.ErrStaleResponse
	}

	if records == nil {
		records = []model.Record{}
	}
	s.records = records
	s.applied = seq
	s.loaded = time.Now()
	s.metrics.RefreshesTotal.WithLabelValues("applied").Inc()
	s.metrics.RecordsLoaded.Set(float64(len(records)))

	s.log.Info().
		Int("records", len(records)).
		Uint64("seq", seq).
		Dur("duration", time.Since(start)).
		Msg("Record set refreshed")
	return nil
}

// Upload ingests a spreadsheet and inserts every record or none. The
// original file is archived once it parses; an archive failure is logged only.
// Returns the number of records inserted.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (int, error) {
	start := time.Now()
	log := s.log.With().Str("file", fileName).Int("bytes", len(data)).Logger()

	var records []model.Record
	g, gctx := errgroup.WithContext(ctx)
	parsed := make(chan struct{})

	g.Go(func() error {
		out, err := s.strategy.Parse(gctx, data)
		if err != nil {
			return err
		}
		records = out
		close(parsed)
		return nil
	})

	if s.archive != nil {
		g.Go(func() error {
			key := storage.ArchiveKey(s.opts.ArchivePrefix, fileName, time.Now())
			// Only files that parse are archived.
			select {
			case <-parsed:
			case <-gctx.Done():
				return nil
			}
			if err := s.archive.Upload(gctx, key, bytes.NewReader(data)); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to archive upload")
				return nil
			}
			log.Debug().Str("key", key).Msg("Upload archived")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.metrics.IngestionFailuresTotal.WithLabelValues("parse").Inc()
		log.Error().Err(err).Msg("Failed to ingest spreadsheet")
		return 0, err
	}

	report := s.strategy.Inspect(ctx, records)
	log.Info().
		Int("rows", report.Rows).
		Int("missing_date", report.MissingDate).
		Int("unknown_range", report.UnknownRange).
		Int("bases", report.DistinctBases).
		Msg("Spreadsheet ingested")

	insertStart := time.Now()
	err := s.adapter.InsertMany(ctx, records)
	s.observeStore("insert", insertStart, err)
	if err != nil {
		s.metrics.IngestionFailuresTotal.WithLabelValues("insert").Inc()
		log.Error().Err(err).Msg("Failed to insert records")
		return 0, err
	}
	s.metrics.RowsIngestedTotal.Add(float64(len(records)))

	if err := s.refreshAfterMutation(ctx); err != nil {
		return len(records), err
	}

	log.Info().Int("inserted", len(records)).Dur("duration", time.Since(start)).Msg("Upload completed")
	return len(records), nil
}

// Delete removes one record and re-fetches. A failed delete skips the re-fetch.
func (s *Service) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.adapter.DeleteOne(ctx, id)
	s.observeStore("delete", start, err)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("Failed to delete record")
		return err
	}

	s.log.Info().Int64("id", id).Msg("Record deleted")
	return s.refreshAfterMutation(ctx)
}

// Clear removes every record and re-fetches.
func (s *Service) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.adapter.DeleteAll(ctx)
	s.observeStore("delete_all", start, err)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to clear records")
		return err
	}

	s.log.Info().Msg("All records deleted")
	return s.refreshAfterMutation(ctx)
}

// refreshAfterMutation treats a stale result as success: the set that won
// was fetched by a refresh issued after this one, so after the mutation.
func (s *Service) refreshAfterMutation(ctx context.Context) error {
	err := s.Refresh(ctx)
	if err == errors.ErrStaleResponse {
		return nil
	}
	return err
}

func (s *Service) observeStore(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(op, status).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
