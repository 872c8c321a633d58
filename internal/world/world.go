package world

import (
	"math/rand"

	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/core/timer"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

// MapService answers geometry questions about the loaded map.
type MapService interface {
	GroupIDFor(x, y int) string
	AdjacentGroups(id string) []string
	Groups() []string
	IsBlocked(x, y int) bool
	IsOutOfBounds(x, y int) bool
	RandomStartingPosition(rng *rand.Rand) (int, int)
}

// World bundles the state of one world instance. Every component receives
// it explicitly; several worlds can run side by side.
// Accessed only from the game loop goroutine.
type World struct {
	ID       int
	Entities *Registry
	Zones    *ZoneManager
	Out      *Broadcaster
	Timers   *timer.Scheduler
	Bus      *event.Bus
	Map      MapService
	Rng      *rand.Rand

	log *zap.Logger
}

func New(id int, m MapService, bus *event.Bus, rng *rand.Rand, log *zap.Logger) *World {
	zones := NewZoneManager(m, bus, log)
	return &World{
		ID:       id,
		Entities: NewRegistry(log),
		Zones:    zones,
		Out:      NewBroadcaster(zones, log),
		Timers:   timer.New(),
		Bus:      bus,
		Map:      m,
		Rng:      rng,
		log:      log,
	}
}

// AddEntity registers e and places it in its zone group.
func (w *World) AddEntity(e *Entity) bool {
	if !w.Entities.Add(e) {
		return false
	}
	w.Zones.UpdateMembership(e)
	return true
}

// RemoveEntity drops e from the groups and the registry and releases its
// aggro links. Nothing is sent.
func (w *World) RemoveEntity(e *Entity) {
	if w.Entities.Get(e.ID) != e {
		w.log.Debug("remove of unknown entity", zap.String("id", e.ID))
		return
	}
	detach(w.Entities, e)
	w.Zones.Remove(e)
	w.Entities.Remove(e.ID)
}

// Despawn tells the neighbourhood e is gone, then removes it.
func (w *World) Despawn(e *Entity) {
	if w.Entities.Get(e.ID) != e {
		return
	}
	w.Out.PushToAdjacentGroups(e.Group, packet.Despawn(e.ID), e.ID)
	w.RemoveEntity(e)
}

// MoveEntity sets e's position and updates its group. It reports whether
// the home group changed.
func (w *World) MoveEntity(e *Entity, x, y int) bool {
	e.X, e.Y = x, y
	changed := w.Zones.UpdateMembership(e)
	event.Publish(w.Bus, event.EntityMoved{EntityID: e.ID, X: x, Y: y})
	return changed
}

// HandleZoneChange notifies the groups e left and, for players, refreshes
// the list of entities they should know about.
func (w *World) HandleZoneChange(e *Entity) {
	w.Out.PushToPreviousGroups(e, packet.Destroy(e.ID))
	if e.Type == TypePlayer {
		w.PushRelevantEntityListTo(e)
	}
}

// AddPlayer binds the player's queue and places it in the world.
func (w *World) AddPlayer(e *Entity, conn Conn) bool {
	w.Out.AddQueue(e.ID, conn)
	if !w.AddEntity(e) {
		w.Out.RemoveQueue(e.ID)
		return false
	}
	event.Publish(w.Bus, event.PlayerEntered{PlayerID: e.ID, Name: e.Player.Name})
	return true
}

// RemovePlayer despawns the player and tears down its queue. Queued
// messages are flushed first. PlayerExited fires while e is still
// registered.
func (w *World) RemovePlayer(e *Entity) {
	event.Publish(w.Bus, event.PlayerExited{PlayerID: e.ID, Name: e.Player.Name})
	w.Out.RemoveQueue(e.ID)
	if e.Char != nil && e.Char.InvincibleTask != 0 {
		w.Timers.Cancel(e.Char.InvincibleTask)
		e.Char.InvincibleTask = 0
	}
	w.Despawn(e)
}

// PushRelevantEntityListTo sends p the ids of every entity its group can see.
func (w *World) PushRelevantEntityListTo(p *Entity) {
	if p.Group == "" {
		return
	}
	ids := w.Zones.MemberIDs(p.Group)
	out := ids[:0]
	for _, id := range ids {
		if id != p.ID {
			out = append(out, id)
		}
	}
	w.Out.PushToPlayer(p.ID, packet.List(out))
}

// Population returns the number of players in the world.
func (w *World) Population() int {
	return w.Entities.Count(TypePlayer)
}

// UpdatePopulation tells every player how many are online.
func (w *World) UpdatePopulation() {
	w.Out.PushBroadcast(packet.Population(w.ID, w.Population()), "")
}

// IsValidPosition reports whether a character may stand on (x, y).
func (w *World) IsValidPosition(x, y int) bool {
	return !w.Map.IsOutOfBounds(x, y) && !w.Map.IsBlocked(x, y)
}

// IsOccupied reports whether any entity stands on (x, y).
func (w *World) IsOccupied(x, y int) bool {
	gid := w.Map.GroupIDFor(x, y)
	g := w.Zones.Group(gid)
	if g == nil {
		return false
	}
	for _, e := range g.Entities {
		if e.X == x && e.Y == y {
			return true
		}
	}
	return false
}

// IsFree combines IsValidPosition and IsOccupied.
func (w *World) IsFree(x, y int) bool {
	return w.IsValidPosition(x, y) && !w.IsOccupied(x, y)
}

func (w *World) Log() *zap.Logger {
	return w.log
}
