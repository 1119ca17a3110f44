package dashboard

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.NewStoreError("delete", errors.ErrRecordNotFound)

func newTestService(adapter *fakeAdapter, archive *memoryStorage) *Service {
	if archive == nil {
		return NewService(adapter, nil, metrics.NewNop(), Options{ArchivePrefix: "uploads"})
	}
	return NewService(adapter, archive, metrics.NewNop(), Options{ArchivePrefix: "uploads"})
}

func records(acs ...string) []model.Record {
	out := make([]model.Record, len(acs))
	for i, ac := range acs {
		out[i] = model.Record{AC: ac}
	}
	return out
}

func TestRefreshReplacesRecords(t *testing.T) {
	adapter := &fakeAdapter{FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
		return records("PR-AAA", "PR-BBB"), nil
	}}
	svc := newTestService(adapter, nil)

	require.NoError(t, svc.Refresh(context.Background()))

	assert.Len(t, svc.Records(), 2)
	assert.Equal(t, 2, svc.Status().Records)
	assert.False(t, svc.Status().LoadedAt.IsZero())
}

func TestRecordsReturnsCopy(t *testing.T) {
	adapter := &fakeAdapter{FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
		return records("PR-AAA"), nil
	}}
	svc := newTestService(adapter, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	got := svc.Records()
	got[0].AC = "changed"

	assert.Equal(t, "PR-AAA", svc.Records()[0].AC)
}

func TestRefreshFailureKeepsPreviousSet(t *testing.T) {
	fail := false
	adapter := &fakeAdapter{FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
		if fail {
			return nil, errors.NewStoreError("fetch", stderrors.New("timeout"))
		}
		return records("PR-AAA"), nil
	}}
	svc := newTestService(adapter, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	fail = true
	err := svc.Refresh(context.Background())

	assert.True(t, errors.IsStoreError(err))
	assert.Len(t, svc.Records(), 1)
}

func TestRefreshDiscardsStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	adapter := &fakeAdapter{FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
		calls++
		if calls == 1 {
			close(entered)
			<-release
			return records("OLD"), nil
		}
		return records("NEW-1", "NEW-2"), nil
	}}
	svc := newTestService(adapter, nil)

	slow := make(chan error, 1)
	go func() { slow <- svc.Refresh(context.Background()) }()
	<-entered

	require.NoError(t, svc.Refresh(context.Background()))
	close(release)

	select {
	case err := <-slow:
		assert.ErrorIs(t, err, errors.ErrStaleResponse)
	case <-time.After(2 * time.Second):
		t.Fatal("slow refresh did not return")
	}

	got := svc.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "NEW-1", got[0].AC)
	assert.Equal(t, uint64(2), svc.Status().Sequence)
}

func TestRefreshAppliesOlderResponseWhenNewerFails(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	adapter := &fakeAdapter{
		FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
			calls++
			switch calls {
			case 1:
				return records("PR-AAA", "PR-BBB"), nil
			case 2:
				close(entered)
				<-release
				return records("PR-AAA"), nil
			default:
				return nil, errors.NewStoreError("fetch", stderrors.New("timeout"))
			}
		},
		DeleteOneFunc: func(ctx context.Context, id int64) error { return nil },
	}
	svc := newTestService(adapter, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	deleted := make(chan error, 1)
	go func() { deleted <- svc.Delete(context.Background(), 2) }()
	<-entered

	assert.True(t, errors.IsStoreError(svc.Refresh(context.Background())))
	close(release)

	select {
	case err := <-deleted:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not return")
	}

	got := svc.Records()
	require.Len(t, got, 1)
	assert.Equal(t, "PR-AAA", got[0].AC)
	assert.Equal(t, uint64(2), svc.Status().Sequence)
}

func TestUploadInsertsAndRefreshes(t *testing.T) {
	mem := &memoryAdapter{}
	archive := newMemoryStorage()
	svc := newTestService(mem.adapter(), archive)
	data := workbook(t,
		[]interface{}{"DATA", "ACFT", "TEMPO AOS", "TRANSFER/PS", "BASE"},
		[]interface{}{"01/02/2024", "PR-AAA", "1:00", "PS-1", "GRU"},
		[]interface{}{"02/02/2024", "PR-BBB", "2:00", "PS-2", "CGH"},
	)

	n, err := svc.Upload(context.Background(), "aos.xlsx", data)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got := svc.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "PR-BBB", got[0].AC)
	assert.NotNil(t, got[0].ID)
	assert.Equal(t, 1, archive.count())
}

func TestUploadParseErrorInsertsNothing(t *testing.T) {
	mem := &memoryAdapter{}
	archive := newMemoryStorage()
	svc := newTestService(mem.adapter(), archive)

	_, err := svc.Upload(context.Background(), "bad.xlsx", []byte("garbage"))

	assert.True(t, errors.IsParseError(err))
	assert.Empty(t, mem.records)
	assert.Equal(t, 0, mem.fetches)
	assert.Equal(t, 0, archive.count())
}

func TestUploadArchiveFailureIsNotFatal(t *testing.T) {
	mem := &memoryAdapter{}
	archive := newMemoryStorage()
	archive.err = stderrors.New("bucket unavailable")
	svc := newTestService(mem.adapter(), archive)

	n, err := svc.Upload(context.Background(), "aos.xlsx", workbook(t, []interface{}{"01/02/2024", "PR-AAA"}))

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUploadInsertFailureKeepsSetAndSkipsRefresh(t *testing.T) {
	fetches := 0
	adapter := &fakeAdapter{
		FetchAllFunc: func(ctx context.Context) ([]model.Record, error) {
			fetches++
			return records("PR-OLD"), nil
		},
		InsertManyFunc: func(ctx context.Context, records []model.Record) error {
			return errors.NewStoreError("insert", stderrors.New("connection refused"))
		},
	}
	svc := newTestService(adapter, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	_, err := svc.Upload(context.Background(), "aos.xlsx", workbook(t, []interface{}{"01/02/2024", "PR-NEW"}))

	assert.True(t, errors.IsStoreError(err))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "PR-OLD", svc.Records()[0].AC)
}

func TestDeleteRefreshes(t *testing.T) {
	mem := &memoryAdapter{}
	svc := newTestService(mem.adapter(), nil)
	_, err := svc.Upload(context.Background(), "aos.xlsx", workbook(t,
		[]interface{}{"01/02/2024", "PR-AAA"},
		[]interface{}{"01/02/2024", "PR-BBB"},
	))
	require.NoError(t, err)

	id := *svc.Records()[0].ID
	require.NoError(t, svc.Delete(context.Background(), id))

	got := svc.Records()
	require.Len(t, got, 1)
	assert.Equal(t, "PR-AAA", got[0].AC)
}

func TestDeleteMissingSkipsRefresh(t *testing.T) {
	mem := &memoryAdapter{}
	svc := newTestService(mem.adapter(), nil)

	err := svc.Delete(context.Background(), 99)

	assert.ErrorIs(t, err, errors.ErrRecordNotFound)
	assert.Equal(t, 0, mem.fetches)
}

func TestClear(t *testing.T) {
	mem := &memoryAdapter{}
	svc := newTestService(mem.adapter(), nil)
	_, err := svc.Upload(context.Background(), "aos.xlsx", workbook(t, []interface{}{"01/02/2024", "PR-AAA"}))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background()))

	assert.Empty(t, svc.Records())
}
