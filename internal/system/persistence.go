package system

import (
	"time"

	"github.com/l1jgo/bqworld/internal/core/event"
	coresys "github.com/l1jgo/bqworld/internal/core/system"
	"github.com/l1jgo/bqworld/internal/persist"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// SaveQueue accepts character snapshots. Saver implements it.
type SaveQueue interface {
	Save(rec persist.CharacterRecord) bool
}

// PersistenceSystem periodically hands dirty players to the saver and saves
// every player on exit. Phase 4 (Persist).
type PersistenceSystem struct {
	w         *world.World
	queue     SaveQueue
	log       *zap.Logger
	tickCount int
	interval  int
}

func NewPersistenceSystem(w *world.World, queue SaveQueue, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &PersistenceSystem{w: w, queue: queue, log: log, interval: intervalTicks}
	event.Subscribe(w.Bus, s.onPlayerExited)
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
}

// SaveAllPlayers queues every online player, dirty or not. Used at shutdown.
func (s *PersistenceSystem) SaveAllPlayers() {
	s.savePlayers(false)
}

func (s *PersistenceSystem) savePlayers(dirtyOnly bool) {
	count := 0
	s.w.Entities.Players(func(p *world.Entity) {
		if dirtyOnly && !p.Player.Dirty {
			return
		}
		if s.save(p) {
			count++
		}
	})
	if count > 0 {
		s.log.Debug("players queued for save", zap.Int("count", count))
	}
}

func (s *PersistenceSystem) onPlayerExited(ev event.PlayerExited) {
	if p := s.w.Entities.Get(ev.PlayerID); p != nil && p.Player != nil {
		s.save(p)
	}
}

func (s *PersistenceSystem) save(p *world.Entity) bool {
	if p.Player.CharID == 0 {
		return false
	}
	if !s.queue.Save(Snapshot(p)) {
		return false
	}
	p.Player.Dirty = false
	return true
}

// Snapshot copies the persisted fields of player p.
func Snapshot(p *world.Entity) persist.CharacterRecord {
	return persist.CharacterRecord{
		ID:     p.Player.CharID,
		Name:   p.Player.Name,
		Level:  p.Char.Level,
		XP:     p.Player.XP,
		HP:     p.Char.HP(),
		Armor:  p.Char.Armor,
		Weapon: p.Char.Weapon,
		X:      p.X,
		Y:      p.Y,
		Kills:  p.Player.Kills,
	}
}
