package system

import (
	"time"

	coresys "github.com/l1jgo/bqworld/internal/core/system"
	"github.com/l1jgo/bqworld/internal/observe"
	"github.com/l1jgo/bqworld/internal/world"
)

// TimerSystem advances the world clock and fires due tasks. Phase 1 (Update).
type TimerSystem struct {
	w *world.World
}

func NewTimerSystem(w *world.World) *TimerSystem {
	return &TimerSystem{w: w}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TimerSystem) Update(dt time.Duration) {
	s.w.Timers.Advance(dt)
}

// RegenSystem heals characters every interval ticks. Phase 1 (Update).
type RegenSystem struct {
	combat    *CombatResolver
	interval  int
	tickCount int
}

func NewRegenSystem(combat *CombatResolver, intervalTicks int) *RegenSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &RegenSystem{combat: combat, interval: intervalTicks}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RegenSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.combat.RegenTick()
}

// ZoneFlushSystem announces every entity that entered a group this tick.
// Phase 2 (PostUpdate).
type ZoneFlushSystem struct {
	w       *world.World
	metrics *observe.Metrics
}

func NewZoneFlushSystem(w *world.World, metrics *observe.Metrics) *ZoneFlushSystem {
	return &ZoneFlushSystem{w: w, metrics: metrics}
}

func (s *ZoneFlushSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ZoneFlushSystem) Update(_ time.Duration) {
	s.metrics.AddSpawns(s.w.Zones.FlushIncoming(s.w.Out))
}

// OutputSystem hands every queued batch to its connection. Phase 3 (Output).
type OutputSystem struct {
	w       *world.World
	metrics *observe.Metrics
}

func NewOutputSystem(w *world.World, metrics *observe.Metrics) *OutputSystem {
	return &OutputSystem{w: w, metrics: metrics}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.metrics.AddFlushed(s.w.Out.FlushQueues())
}
