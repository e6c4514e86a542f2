package completion

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.flushed()
	m.addSerialized(3)
	m.cacheStoreFailed()
	m.acked(true)
	m.acked(true)
	m.acked(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlushesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsSerializedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheStoreFailuresTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AcksTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcksTotal.WithLabelValues("error")))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.flushed()
	m.addSerialized(1)
	m.cacheStoreFailed()
	m.acked(true)
	m.acked(false)
}
