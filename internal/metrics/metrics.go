// Package metrics exports chain evaluation counters to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smallyu/go-theta-isogeny/internal/chain"
)

const (
	namespace = "thetachain"
)

var (
	resultLabels = []string{"result"}
	phaseLabels  = []string{"phase", "formula"}
	whereLabels  = []string{"model"}
)

// Metrics implements chain.Observer.
type Metrics struct {
	chains    *prometheus.CounterVec
	duration  prometheus.Histogram
	length    prometheus.Histogram
	steps     *prometheus.CounterVec
	stepTime  *prometheus.HistogramVec
	doublings *prometheus.CounterVec
}

var _ chain.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		chains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chains_total",
			Help:      "Count of chain evaluations by result",
		}, resultLabels),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_duration_seconds",
			Help:      "Wall time of a chain evaluation",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		length: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of (2,2)-isogenies per chain",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "step",
			Name:      "total",
			Help:      "Count of completed isogeny steps",
		}, phaseLabels),
		stepTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "step",
			Name:      "duration_seconds",
			Help:      "Time from the previous step to the end of this one, doublings included",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, phaseLabels),
		doublings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doublings_total",
			Help:      "Count of kernel point doublings",
		}, whereLabels),
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.chains, m.duration, m.length, m.steps, m.stepTime, m.doublings}
}

// ObserveDoublings counts doublings on the product or in theta coordinates.
func (m *Metrics) ObserveDoublings(onProduct bool, count int) {
	model := "theta"
	if onProduct {
		model = "product"
	}
	m.doublings.WithLabelValues(model).Add(float64(count))
}

// ObserveStep records one finished step.
func (m *Metrics) ObserveStep(info chain.StepInfo) {
	formula := "generic"
	switch {
	case info.Phase == chain.PhaseGluing:
		formula = "gluing"
	case info.InverseFree:
		formula = "inverse_free"
	}
	m.steps.WithLabelValues(info.Phase, formula).Inc()
	m.stepTime.WithLabelValues(info.Phase, formula).Observe(info.Elapsed.Seconds())
}

// ObserveChain records a finished run and its outcome.
func (m *Metrics) ObserveChain(n int, elapsed time.Duration, err error) {
	m.chains.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.length.Observe(float64(n))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, chain.ErrDegenerateStepMismatch):
		return "flag_mismatch"
	case errors.Is(err, chain.ErrDegenerateStep):
		return "degenerate"
	case errors.Is(err, chain.ErrMalformedKernel):
		return "malformed_kernel"
	case errors.Is(err, chain.ErrNotProduct):
		return "not_product"
	case errors.Is(err, chain.ErrStrategyLengthMismatch),
		errors.Is(err, chain.ErrFlagLengthMismatch),
		errors.Is(err, chain.ErrInvalidParameters):
		return "invalid_parameters"
	default:
		return "error"
	}
}
