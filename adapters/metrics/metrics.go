// Package metrics provides Prometheus metrics for the class engine. The
// Collector implements ports.Observer so a registry can report to it.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/slotkit/ports"
)

// DefaultNamespace prefixes every metric name unless configured otherwise.
const DefaultNamespace = "slotkit"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var _ ports.Observer = (*Collector)(nil)

// Collector holds all Prometheus metrics for slotkit.
type Collector struct {
	// Declaration metrics
	ClassesDeclared prometheus.Counter

	// Finalization metrics
	Finalizations *prometheus.CounterVec
	ClassSlots    *prometheus.GaugeVec

	// Instance metrics
	Constructions      *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	// Reload metrics, driven by the definition watcher
	Reloads      prometheus.Counter
	ReloadErrors prometheus.Counter
	LastReload   prometheus.Gauge
}

// New creates a collector registered with the default Prometheus registry.
func New(namespace string) *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer, namespace)
}

// NewWithRegistry creates a collector registered with reg.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Collector{
		ClassesDeclared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classes_declared_total",
				Help:      "Total number of classes declared",
			},
		),
		Finalizations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "class_finalizations_total",
				Help:      "Total number of class finalizations by result",
			},
			[]string{"result"},
		),
		ClassSlots: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "class_slots",
				Help:      "Number of effective slots of each finalized class",
			},
			[]string{"class"},
		),
		Constructions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instances_constructed_total",
				Help:      "Total number of construction attempts by class and result",
			},
			[]string{"class", "result"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Total number of values rejected by slot validators",
			},
			[]string{"class", "field"},
		),
		Reloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "definition_reloads_total",
				Help:      "Total number of successful class definition reloads",
			},
		),
		ReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "definition_reload_errors_total",
				Help:      "Total number of failed class definition reloads",
			},
		),
		LastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definition_last_reload_timestamp",
				Help:      "Unix timestamp of the last successful definition reload",
			},
		),
	}
}

// ClassDeclared implements ports.Observer.
func (c *Collector) ClassDeclared(string) {
	c.ClassesDeclared.Inc()
}

// ClassFinalized implements ports.Observer.
func (c *Collector) ClassFinalized(class string, slots int, err error) {
	if err != nil {
		c.Finalizations.WithLabelValues(ResultError).Inc()
		return
	}
	c.Finalizations.WithLabelValues(ResultOK).Inc()
	c.ClassSlots.WithLabelValues(class).Set(float64(slots))
}

// InstanceConstructed implements ports.Observer.
func (c *Collector) InstanceConstructed(class string, err error) {
	c.Constructions.WithLabelValues(class, result(err)).Inc()
}

// ValidationFailed implements ports.Observer.
func (c *Collector) ValidationFailed(class, field string) {
	c.ValidationFailures.WithLabelValues(class, field).Inc()
}

// RecordReload records the outcome of reloading class definitions.
func (c *Collector) RecordReload(err error) {
	if err != nil {
		c.ReloadErrors.Inc()
		return
	}
	c.Reloads.Inc()
	c.LastReload.Set(float64(time.Now().Unix()))
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Sample is one summed metric family.
type Sample struct {
	Name  string
	Value float64
}

// Summarize gathers g and sums every counter and gauge family across its
// label sets. Families are returned sorted by name.
func Summarize(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(families))
	for _, f := range families {
		var total float64
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		samples = append(samples, Sample{Name: f.GetName(), Value: total})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})
	return samples, nil
}
