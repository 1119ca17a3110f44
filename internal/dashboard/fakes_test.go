package dashboard

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeAdapter struct {
	FetchAllFunc   func(ctx context.Context) ([]model.Record, error)
	InsertManyFunc func(ctx context.Context, records []model.Record) error
	DeleteOneFunc  func(ctx context.Context, id int64) error
	DeleteAllFunc  func(ctx context.Context) error
}

func (f *fakeAdapter) FetchAll(ctx context.Context) ([]model.Record, error) {
	return f.FetchAllFunc(ctx)
}

func (f *fakeAdapter) InsertMany(ctx context.Context, records []model.Record) error {
	return f.InsertManyFunc(ctx, records)
}

func (f *fakeAdapter) DeleteOne(ctx context.Context, id int64) error {
	return f.DeleteOneFunc(ctx, id)
}

func (f *fakeAdapter) DeleteAll(ctx context.Context) error {
	return f.DeleteAllFunc(ctx)
}

// memoryAdapter is an in-memory store that assigns increasing ids.
type memoryAdapter struct {
	mu      sync.Mutex
	nextID  int64
	records []model.Record
	fetches int
}

func (m *memoryAdapter) adapter() *fakeAdapter {
	return &fakeAdapter{
		FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.fetches++
			out := make([]model.Record, 0, len(m.records))
			for i := len(m.records) - 1; i >= 0; i-- {
				out = append(out, m.records[i])
			}
			return out, nil
		},
		InsertManyFunc: func(ctx context.Context, records []model.Record) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, rec := range records {
				m.nextID++
				id := m.nextID
				rec.ID = &id
				m.records = append(m.records, rec)
			}
			return nil
		},
		DeleteOneFunc: func(ctx context.Context, id int64) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, rec := range m.records {
				if *rec.ID == id {
					m.records = append(m.records[:i], m.records[i+1:]...)
					return nil
				}
			}
			return errNotFound
		},
		DeleteAllFunc: func(ctx context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.records = nil
			return nil
		},
	}
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(bytes.NewReader(s.objects[key])), nil
}

func (s *memoryStorage) Upload(ctx context.Context, key string, data io.Reader) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memoryStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[r]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
