package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %s not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.AddFlushed(3)
	m.AddFlushed(0)
	m.AddSpawns(2)
	m.RecordKill("mob")
	m.RecordKill("player")
	m.PlayerJoined()
	m.PlayerJoined()
	m.PlayerLeft()
	m.RecordSaveError()

	rm := collect(t, reader)
	tests := []struct {
		name string
		want int64
	}{
		{"bqworld.messages.flushed", 3},
		{"bqworld.spawns.flushed", 2},
		{"bqworld.kills", 2},
		{"bqworld.players.online", 1},
		{"bqworld.save.errors", 1},
	}
	for _, tt := range tests {
		if got := sumValue(t, rm, tt.name); got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTickHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordTick(2 * time.Millisecond)
	m.RecordTick(4 * time.Millisecond)

	rm := collect(t, reader)
	met := findMetric(rm, "bqworld.tick.duration")
	if met == nil {
		t.Fatal("tick histogram missing")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("histogram = %+v", met.Data)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordTick(time.Millisecond)
	m.AddFlushed(1)
	m.RecordKill("mob")
	m.PlayerJoined()
	m.PlayerLeft()
	m.RecordSaveError()
}
