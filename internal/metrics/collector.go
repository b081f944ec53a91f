// Package metrics exposes propagation engine progress as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/omwave/internal/sim"
)

// Collector records engine steps. It implements sim.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	StepsTotal      prometheus.Counter
	StepDuration    prometheus.Histogram
	PhaseDifference prometheus.Gauge
	ElapsedTime     prometheus.Gauge
}

// NewCollector registers the engine metrics against reg, or the default
// registerer when reg is nil. Registering twice on the same registry reuses
// the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "omwave_steps_total",
		Help: "Completed propagation steps.",
	}), "omwave_steps_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "omwave_step_duration_seconds",
		Help:    "Wall time spent integrating all wavefronts for one step.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}), "omwave_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	phase, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "omwave_phase_difference",
		Help: "Phase difference between the middle and the edge of the reference wavefront.",
	}), "omwave_phase_difference")
	if err != nil {
		return nil, err
	}

	elapsed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "omwave_elapsed_time",
		Help: "Simulated time since the start of the run.",
	}), "omwave_elapsed_time")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		StepsTotal:      steps,
		StepDuration:    duration,
		PhaseDifference: phase,
		ElapsedTime:     elapsed,
	}, nil
}

func (c *Collector) OnStep(clk sim.Clock) {
	c.StepsTotal.Inc()
	c.StepDuration.Observe(clk.Wall.Seconds())
	c.PhaseDifference.Set(clk.PhaseDifference)
	c.ElapsedTime.Set(clk.Elapsed)
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
