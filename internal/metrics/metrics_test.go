package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistriesAreIsolated(t *testing.T) {
	a := NewNop()
	b := NewNop()

	a.RefreshesTotal.WithLabelValues("applied").Inc()
	a.RefreshesTotal.WithLabelValues("applied").Inc()
	b.RefreshesTotal.WithLabelValues("stale").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(a.RefreshesTotal.WithLabelValues("applied")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.RefreshesTotal.WithLabelValues("applied")))
}

func TestGatherExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RowsIngestedTotal.Add(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["aos_rows_ingested_total"])
}
