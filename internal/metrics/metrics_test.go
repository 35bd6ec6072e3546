package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/eigenlog/eigenlog/internal/domain"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	var total float64
	for m := range ch {
		var d dto.Metric
		if err := m.Write(&d); err != nil {
			t.Fatal(err)
		}
		if d.Counter != nil {
			total += d.Counter.GetValue()
		}
		if d.Gauge != nil {
			total += d.Gauge.GetValue()
		}
	}
	return total
}

func TestObserveShip(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ObserveShip("h1", "app1", domain.Info, 3)

	if got := counterValue(t, m.RecordsShipped); got != 3 {
		t.Errorf("RecordsShipped = %v, want 3", got)
	}
	if got := counterValue(t, m.BatchesShipped); got != 1 {
		t.Errorf("BatchesShipped = %v, want 1", got)
	}
}

func TestObserveShipError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ObserveShipError("h1", "app1")

	if got := counterValue(t, m.ShipErrors); got != 1 {
		t.Errorf("ShipErrors = %v, want 1", got)
	}
}

func TestSetCacheDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.SetCacheDepth("h1", "app1", domain.Debug, 42)

	if got := counterValue(t, m.CacheDepth); got != 42 {
		t.Errorf("CacheDepth = %v, want 42", got)
	}
}

func TestObserveSubmitAndQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ObserveSubmit("h1-app1-info", 5)
	m.ObserveQuery(10)

	if got := counterValue(t, m.RecordsSubmitted); got != 5 {
		t.Errorf("RecordsSubmitted = %v, want 5", got)
	}
	if got := counterValue(t, m.QueriesTotal); got != 1 {
		t.Errorf("QueriesTotal = %v, want 1", got)
	}
}
