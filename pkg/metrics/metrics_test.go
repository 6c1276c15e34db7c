package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestFactory_UsesRegistry(t *testing.T) {
	original := Registry
	defer func() { Registry = original }()

	reg := prometheus.NewRegistry()
	Registry = reg

	counter := Factory().NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "factory_test_total",
		Help:      "test counter",
	})
	counter.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 1 || families[0].GetName() != "history_factory_test_total" {
		t.Errorf("Gather() = %v, want history_factory_test_total", families)
	}
}
