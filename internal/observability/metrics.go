// Package observability wires Prometheus metrics and OpenTelemetry tracing
// for simulation runs.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles Prometheus metrics describing run outcomes.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	MissDistance *prometheus.HistogramVec
	FlightTime   *prometheus.HistogramVec
	Saturations  *prometheus.CounterVec
}

// NewCollector registers run metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ramjet_runs_total",
		Help: "Completed simulation runs, labeled by scenario and outcome.",
	}, []string{"scenario", "outcome"}), "ramjet_runs_total")
	if err != nil {
		return nil, err
	}
	miss, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ramjet_miss_distance_meters",
		Help:    "Horizontal miss distance at run end.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"scenario"}), "ramjet_miss_distance_meters")
	if err != nil {
		return nil, err
	}
	tof, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ramjet_flight_time_seconds",
		Help:    "Simulated time of flight.",
		Buckets: prometheus.LinearBuckets(5, 5, 20),
	}, []string{"scenario"}), "ramjet_flight_time_seconds")
	if err != nil {
		return nil, err
	}
	sat, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ramjet_guidance_saturations_total",
		Help: "Integration steps on which the guidance command was clipped to the airframe limit.",
	}, []string{"scenario"}), "ramjet_guidance_saturations_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Runs:         runs,
		MissDistance: miss,
		FlightTime:   tof,
		Saturations:  sat,
	}, nil
}

// ObserveRun records one finished run. A nil collector is a no-op.
func (c *Collector) ObserveRun(scenario, outcome string, missDistance, flightTime float64, saturations int) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(scenario, outcome).Inc()
	if outcome != "aborted" {
		c.MissDistance.WithLabelValues(scenario).Observe(missDistance)
		c.FlightTime.WithLabelValues(scenario).Observe(flightTime)
	}
	c.Saturations.WithLabelValues(scenario).Add(float64(saturations))
}

// WriteTextfile dumps the gathered metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
