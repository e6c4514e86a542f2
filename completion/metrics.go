package completion

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments one or more Completer instances. All methods are safe
// on a nil receiver so instrumentation stays optional.
type Metrics struct {
	FlushesTotal            prometheus.Counter
	EventsSerializedTotal   prometheus.Counter
	CacheStoreFailuresTotal prometheus.Counter
	AcksTotal               *prometheus.CounterVec // result: ok|error
}

// NewMetrics builds and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sqs_lambda",
			Subsystem: "completion",
			Name:      "flushes_total",
			Help:      "Completed flush cycles.",
		}),
		EventsSerializedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sqs_lambda",
			Subsystem: "completion",
			Name:      "events_serialized_total",
			Help:      "Completed events serialized and emitted.",
		}),
		CacheStoreFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sqs_lambda",
			Subsystem: "completion",
			Name:      "cache_store_failures_total",
			Help:      "Dedup identity writes that failed (non-fatal).",
		}),
		AcksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sqs_lambda",
			Subsystem: "completion",
			Name:      "acks_total",
			Help:      "Ack callback invocations by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.FlushesTotal, m.EventsSerializedTotal, m.CacheStoreFailuresTotal, m.AcksTotal)
	return m
}

func (m *Metrics) flushed() {
	if m == nil {
		return
	}
	m.FlushesTotal.Inc()
}

func (m *Metrics) addSerialized(n int) {
	if m == nil {
		return
	}
	m.EventsSerializedTotal.Add(float64(n))
}

func (m *Metrics) cacheStoreFailed() {
	if m == nil {
		return
	}
	m.CacheStoreFailuresTotal.Inc()
}

func (m *Metrics) acked(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.AcksTotal.WithLabelValues("ok").Inc()
	} else {
		m.AcksTotal.WithLabelValues("error").Inc()
	}
}
