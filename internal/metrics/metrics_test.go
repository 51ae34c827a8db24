package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ExperimentsStarted.WithLabelValues("sleep_to_sugar").Inc()
	m.ExperimentsStarted.WithLabelValues("sleep_to_sugar").Inc()
	m.WhatIfCacheHits.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExperimentsStarted.WithLabelValues("sleep_to_sugar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WhatIfCacheHits))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "wellness_experiments_started_total")
	assert.Contains(t, names, "wellness_whatif_cache_hits_total")
}

func TestNewNop_Independent(t *testing.T) {
	a, b := NewNop(), NewNop()
	a.ExperimentsReset.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ExperimentsReset))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ExperimentsReset))
}
