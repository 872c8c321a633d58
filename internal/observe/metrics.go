// Package observe holds the OpenTelemetry instruments of the world server.
// A Prometheus bridge is installed by InitProvider so /metrics can be
// scraped; tests build Metrics over a manual reader instead.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/l1jgo/bqworld"

// Metrics holds every instrument. A nil *Metrics records nothing, so systems
// can run without observability wired in.
type Metrics struct {
	// TickDuration is the wall time of one full runner tick.
	TickDuration metric.Float64Histogram

	// MessagesFlushed counts messages handed to the transport.
	MessagesFlushed metric.Int64Counter

	// SpawnsFlushed counts SPAWN messages produced by incoming flushes.
	SpawnsFlushed metric.Int64Counter

	// Kills counts deaths. Use with attribute.String("type", "mob"|"player").
	Kills metric.Int64Counter

	// PlayersOnline tracks players currently in the world.
	PlayersOnline metric.Int64UpDownCounter

	// SaveErrors counts failed character saves.
	SaveErrors metric.Int64Counter
}

var tickBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05, 0.1,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TickDuration, err = m.Float64Histogram("bqworld.tick.duration",
		metric.WithDescription("Wall time spent in one simulation tick."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MessagesFlushed, err = m.Int64Counter("bqworld.messages.flushed",
		metric.WithDescription("Messages handed to client connections."),
	); err != nil {
		return nil, err
	}
	if met.SpawnsFlushed, err = m.Int64Counter("bqworld.spawns.flushed",
		metric.WithDescription("SPAWN messages produced by zone group incoming flushes."),
	); err != nil {
		return nil, err
	}
	if met.Kills, err = m.Int64Counter("bqworld.kills",
		metric.WithDescription("Character deaths by type."),
	); err != nil {
		return nil, err
	}
	if met.PlayersOnline, err = m.Int64UpDownCounter("bqworld.players.online",
		metric.WithDescription("Players currently in the world."),
	); err != nil {
		return nil, err
	}
	if met.SaveErrors, err = m.Int64Counter("bqworld.save.errors",
		metric.WithDescription("Character saves that failed."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) RecordTick(d time.Duration) {
	if m == nil {
		return
	}
	m.TickDuration.Record(context.Background(), d.Seconds())
}

func (m *Metrics) AddFlushed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.MessagesFlushed.Add(context.Background(), int64(n))
}

func (m *Metrics) AddSpawns(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SpawnsFlushed.Add(context.Background(), int64(n))
}

func (m *Metrics) RecordKill(entityType string) {
	if m == nil {
		return
	}
	m.Kills.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", entityType)))
}

func (m *Metrics) PlayerJoined() {
	if m == nil {
		return
	}
	m.PlayersOnline.Add(context.Background(), 1)
}

func (m *Metrics) PlayerLeft() {
	if m == nil {
		return
	}
	m.PlayersOnline.Add(context.Background(), -1)
}

func (m *Metrics) RecordSaveError() {
	if m == nil {
		return
	}
	m.SaveErrors.Add(context.Background(), 1)
}
