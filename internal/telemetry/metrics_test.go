package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	first := NewMetrics(prometheus.NewRegistry())
	second := NewMetrics(prometheus.NewRegistry())

	first.RootsBuilt.Inc()
	first.MovementsBuilt.WithLabelValues("mysql").Add(3)

	if got := testutil.ToFloat64(first.RootsBuilt); got != 1 {
		t.Errorf("expected 1 root, got %v", got)
	}
	if got := testutil.ToFloat64(first.MovementsBuilt.WithLabelValues("mysql")); got != 3 {
		t.Errorf("expected 3 movements, got %v", got)
	}
	if got := testutil.ToFloat64(second.RootsBuilt); got != 0 {
		t.Errorf("second registry should be untouched, got %v", got)
	}
}
