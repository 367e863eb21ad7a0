package metrics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/slotkit/adapters/metrics"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "")

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.ClassesDeclared == nil || m.Finalizations == nil || m.Constructions == nil {
		t.Error("collector metrics not initialized")
	}

	m.ClassDeclared("p1")
	if got := testutil.ToFloat64(m.ClassesDeclared); got != 1 {
		t.Errorf("classes_declared_total = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "slotkit_classes_declared_total" {
			found = true
		}
	}
	if !found {
		t.Error("default namespace not applied")
	}
}

func TestClassFinalized(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	m.ClassFinalized("p1", 2, nil)
	m.ClassFinalized("p2", 3, nil)
	m.ClassFinalized("bad", 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.Finalizations.WithLabelValues(metrics.ResultOK)); got != 2 {
		t.Errorf("ok finalizations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Finalizations.WithLabelValues(metrics.ResultError)); got != 1 {
		t.Errorf("failed finalizations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ClassSlots.WithLabelValues("p2")); got != 3 {
		t.Errorf("class_slots{p2} = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(m.ClassSlots); got != 2 {
		t.Errorf("class_slots series = %d, want 2 (failed classes are not recorded)", got)
	}
}

func TestInstanceMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	m.InstanceConstructed("p3", nil)
	m.InstanceConstructed("p3", errors.New("invalid"))
	m.InstanceConstructed("p3", errors.New("invalid"))
	m.ValidationFailed("p3", "x")

	if got := testutil.ToFloat64(m.Constructions.WithLabelValues("p3", metrics.ResultError)); got != 2 {
		t.Errorf("failed constructions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ValidationFailures.WithLabelValues("p3", "x")); got != 1 {
		t.Errorf("validation failures = %v, want 1", got)
	}

	expected := `
# HELP test_validation_failures_total Total number of values rejected by slot validators
# TYPE test_validation_failures_total counter
test_validation_failures_total{class="p3",field="x"} 1
`
	if err := testutil.CollectAndCompare(m.ValidationFailures, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metric output: %v", err)
	}
}

func TestRecordReload(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	m.RecordReload(nil)
	m.RecordReload(errors.New("parse error"))

	if got := testutil.ToFloat64(m.Reloads); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ReloadErrors); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastReload); got <= 0 {
		t.Errorf("last reload timestamp = %v, want > 0", got)
	}
}

func TestSummarize(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, "test")

	m.InstanceConstructed("a", nil)
	m.InstanceConstructed("b", nil)
	m.InstanceConstructed("b", errors.New("x"))
	m.ClassFinalized("a", 4, nil)
	m.ClassFinalized("b", 1, nil)

	samples, err := metrics.Summarize(reg)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	got := map[string]float64{}
	for i, s := range samples {
		got[s.Name] = s.Value
		if i > 0 && samples[i-1].Name > s.Name {
			t.Errorf("samples not sorted: %s before %s", samples[i-1].Name, s.Name)
		}
	}
	if got["test_instances_constructed_total"] != 3 {
		t.Errorf("constructions = %v, want 3", got["test_instances_constructed_total"])
	}
	if got["test_class_slots"] != 5 {
		t.Errorf("class_slots sum = %v, want 5", got["test_class_slots"])
	}
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewWithRegistry(reg, "dup")

	defer func() {
		if recover() == nil {
			t.Error("registering the same collector twice should panic")
		}
	}()
	metrics.NewWithRegistry(reg, "dup")
}
