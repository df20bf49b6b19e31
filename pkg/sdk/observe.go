package fieldcodec

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
)

// Call outcomes, used as the "outcome" metric label.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// noRows marks calls that hand back no result rows.
const noRows = -1

// outcome sorts an error into caller mistakes, missing targets and failures of
// the client itself.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrFieldNotFound), errors.Is(err, domain.ErrDocumentNotFound):
		return outcomeNotFound
	case errors.Is(err, domain.ErrUnsupportedSort),
		errors.Is(err, domain.ErrUnsupportedAccess),
		errors.Is(err, domain.ErrCardinalityViolation),
		errors.Is(err, domain.ErrInvalidSchema),
		errors.Is(err, domain.ErrUnknownFieldType):
		return outcomeRejected
	}
	return outcomeError
}

type clientMetrics struct {
	calls   *prometheus.CounterVec   // operation, outcome
	latency *prometheus.HistogramVec // operation
	rows    *prometheus.HistogramVec // operation
}

var (
	metricsMu  sync.Mutex
	registered = map[prometheus.Registerer]*clientMetrics{}
)

// sharedMetrics returns the collectors registered on reg, creating them on first
// use. Clients built with the same registerer feed the same series.
func sharedMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if m, ok := registered[reg]; ok {
		return m, nil
	}
	m := &clientMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldcodec",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Client calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldcodec",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Client call latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		rows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldcodec",
			Subsystem: "sdk",
			Name:      "result_rows",
			Help:      "Hits, values or documents returned per successful read.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.latency, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("fieldcodec: register client metrics: %w", err)
		}
	}
	registered[reg] = m
	return m, nil
}

// observer logs and measures client calls. A nil observer records nothing.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := sharedMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// call is one client operation in flight.
type call struct {
	obs   *observer
	op    string
	field string
	start time.Time
}

// begin starts timing op. field is empty for calls that do not target a field.
func (o *observer) begin(op, field string) call {
	return call{obs: o, op: op, field: field, start: time.Now()}
}

// end records the call. rows is the number of results returned, or noRows.
func (c call) end(rows int, err error) {
	if c.obs == nil {
		return
	}
	dur := time.Since(c.start)
	res := outcome(err)

	if m := c.obs.metrics; m != nil {
		m.calls.WithLabelValues(c.op, res).Inc()
		m.latency.WithLabelValues(c.op).Observe(dur.Seconds())
		if res == outcomeOK && rows != noRows {
			m.rows.WithLabelValues(c.op).Observe(float64(rows))
		}
	}

	log := c.obs.logger
	if log == nil {
		return
	}
	fields := []zap.Field{zap.String("op", c.op), zap.Duration("duration", dur)}
	if c.field != "" {
		fields = append(fields, zap.String("field", c.field))
	}
	switch res {
	case outcomeOK:
		if rows != noRows {
			fields = append(fields, zap.Int("rows", rows))
		}
		log.Debug("call completed", fields...)
	case outcomeError:
		log.Warn("call failed", append(fields, zap.Error(err))...)
	default:
		log.Debug("call rejected", append(fields, zap.String("outcome", res), zap.Error(err))...)
	}
}
