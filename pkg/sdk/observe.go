package sdk

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// observer logs every public Client call and, with WithPrometheus, counts
// and times it. A nil observer does nothing.
type observer struct {
	logger  *zap.Logger
	calls   *prometheus.CounterVec   // operation, status
	latency *prometheus.HistogramVec // operation
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}

	o.calls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docs_mcp",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK calls by operation and status.",
	}, []string{"operation", "status"})
	o.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docs_mcp",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK call latency by operation.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	if err := registerOrReuse(reg, &o.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &o.latency); err != nil {
		return nil, err
	}
	return o, nil
}

// registerOrReuse registers *c, or points *c at the collector a previous
// Client already registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return fmt.Errorf("sdk: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("sdk: metric already registered as %T", dup.ExistingCollector)
	}
	*c = existing
	return nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if o.calls != nil {
		o.calls.WithLabelValues(op, status).Inc()
		o.latency.WithLabelValues(op).Observe(took.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed", zap.String("op", op), zap.Duration("duration", took), zap.Error(err))
		return
	}
	o.logger.Debug("operation completed", zap.String("op", op), zap.Duration("duration", took))
}
