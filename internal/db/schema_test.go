package db

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordColumnTypes reads the aos_records column types from the MySQL migration.
func recordColumnTypes(t *testing.T) map[string]string {
	t.Helper()

	raw, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	sql := string(raw)
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS aos_records (")
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(sql[start:], ") ENGINE")
	require.Greater(t, end, 0)

	types := map[string]string{}
	for _, line := range strings.Split(sql[start:start+end], "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		types[fields[0]] = fields[1]
	}
	return types
}

func TestRecordColumnsAreUnbounded(t *testing.T) {
	types := recordColumnTypes(t)

	for _, col := range strings.Split(recordColumns, ",") {
		col = strings.TrimSpace(col)
		assert.Equal(t, "TEXT", types[col], col)
	}
}

func TestInsertManyKeepsLongFreeText(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	long := strings.Repeat("aguardando material ", 20)

	rec := model.Record{
		StartDate:    long,
		TempoAOS:     long,
		Range:        long,
		HoraReq:      long,
		MTLUtilizado: long,
	}
	require.NoError(t, repo.InsertMany(ctx, []model.Record{rec}))

	got, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, long, got[0].TempoAOS)
	assert.Equal(t, long, got[0].MTLUtilizado)
	assert.Equal(t, long, got[0].Range)
}
