package world

import (
	"sort"

	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

// ZoneGroup is one fixed spatial partition of the map. An entity is a member
// of every group adjacent to its home group; Players lists only the players
// whose home group this is.
type ZoneGroup struct {
	ID       string
	Entities map[string]*Entity
	Players  []string
	Incoming []*Entity
}

func (g *ZoneGroup) has(e *Entity) bool {
	cur, ok := g.Entities[e.ID]
	return ok && cur == e
}

func (g *ZoneGroup) queued(e *Entity) bool {
	for _, in := range g.Incoming {
		if in == e {
			return true
		}
	}
	return false
}

func (g *ZoneGroup) addPlayer(id string) {
	for _, p := range g.Players {
		if p == id {
			return
		}
	}
	g.Players = append(g.Players, id)
}

func (g *ZoneGroup) removePlayer(id string) {
	for i, p := range g.Players {
		if p == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return
		}
	}
}

// ZoneManager keeps group membership in step with entity positions.
type ZoneManager struct {
	groups map[string]*ZoneGroup
	order  []string
	m      MapService
	bus    *event.Bus
	log    *zap.Logger
}

// NewZoneManager creates every group the map defines. Groups are never
// created afterwards.
func NewZoneManager(m MapService, bus *event.Bus, log *zap.Logger) *ZoneManager {
	zm := &ZoneManager{
		groups: make(map[string]*ZoneGroup),
		m:      m,
		bus:    bus,
		log:    log,
	}
	for _, id := range m.Groups() {
		zm.groups[id] = &ZoneGroup{ID: id, Entities: make(map[string]*Entity)}
		zm.order = append(zm.order, id)
	}
	return zm
}

// Group returns nil for unknown ids.
func (zm *ZoneManager) Group(id string) *ZoneGroup {
	return zm.groups[id]
}

// Adjacent returns the neighbour set of id, itself included.
func (zm *ZoneManager) Adjacent(id string) []string {
	return zm.m.AdjacentGroups(id)
}

func (zm *ZoneManager) lookup(id string) *ZoneGroup {
	g := zm.groups[id]
	if g == nil {
		zm.log.Debug("unknown zone group", zap.String("group", id))
	}
	return g
}

// UpdateMembership moves e into the group its position maps to. It reports
// whether the home group changed; an unchanged group has no side effects.
//
// e leaves every group adjacent to its old home, then joins every group
// adjacent to the new one and is queued there for SPAWN. Players in groups
// adjacent to both homes therefore get a fresh SPAWN, which clients treat
// as a refresh. Groups left for good are kept in e.RecentlyLeft.
func (zm *ZoneManager) UpdateMembership(e *Entity) bool {
	newID := zm.m.GroupIDFor(e.X, e.Y)
	if newID == "" {
		zm.log.Debug("entity outside every zone group",
			zap.String("id", e.ID), zap.Int("x", e.X), zap.Int("y", e.Y))
		return false
	}
	if newID == e.Group {
		return false
	}
	oldID := e.Group

	var oldSet []string
	if oldID != "" {
		if g := zm.lookup(oldID); g != nil {
			g.removePlayer(e.ID)
		}
		for _, gid := range zm.m.AdjacentGroups(oldID) {
			g := zm.lookup(gid)
			if g == nil || !g.has(e) {
				continue
			}
			delete(g.Entities, e.ID)
			oldSet = append(oldSet, gid)
		}
	}

	newSet := zm.m.AdjacentGroups(newID)
	for _, gid := range newSet {
		g := zm.lookup(gid)
		if g == nil || g.has(e) {
			continue
		}
		g.Entities[e.ID] = e
		if !e.IsDroppedItem() && !g.queued(e) {
			g.Incoming = append(g.Incoming, e)
		}
	}

	var left []string
	for _, gid := range oldSet {
		if !contains(newSet, gid) {
			left = append(left, gid)
		}
	}
	e.RecentlyLeft = left
	e.Group = newID
	if e.Type == TypePlayer {
		if g := zm.lookup(newID); g != nil {
			g.addPlayer(e.ID)
		}
	}

	event.Publish(zm.bus, event.ZoneChanged{EntityID: e.ID, From: oldID, To: newID})
	return true
}

// Remove takes e out of every group and returns the groups it was in.
func (zm *ZoneManager) Remove(e *Entity) []string {
	if e.Group == "" {
		return nil
	}
	if g := zm.lookup(e.Group); g != nil {
		g.removePlayer(e.ID)
	}
	var left []string
	for _, gid := range zm.m.AdjacentGroups(e.Group) {
		g := zm.groups[gid]
		if g == nil || !g.has(e) {
			continue
		}
		delete(g.Entities, e.ID)
		left = append(left, gid)
	}
	e.Group = ""
	e.RecentlyLeft = nil
	return left
}

// FlushIncoming sends one SPAWN per incoming entity to the players of each
// group, in group order, then clears the lists. A player never receives its
// own SPAWN; entities that left the group before the flush are skipped.
func (zm *ZoneManager) FlushIncoming(out *Broadcaster) int {
	sent := 0
	for _, gid := range zm.order {
		g := zm.groups[gid]
		if len(g.Incoming) == 0 {
			continue
		}
		incoming := g.Incoming
		g.Incoming = nil
		if len(g.Players) == 0 {
			continue
		}
		for _, e := range incoming {
			if !g.has(e) {
				continue
			}
			except := ""
			if e.Type == TypePlayer {
				except = e.ID
			}
			out.PushToGroup(gid, packet.Spawn(e.State()), except)
			sent++
		}
	}
	return sent
}

// MemberIDs returns the ids of every entity visible from group id, sorted.
func (zm *ZoneManager) MemberIDs(id string) []string {
	g := zm.lookup(id)
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Entities))
	for eid := range g.Entities {
		ids = append(ids, eid)
	}
	sort.Strings(ids)
	return ids
}

// PendingIncoming reports how many entities wait for a SPAWN in group id.
func (zm *ZoneManager) PendingIncoming(id string) int {
	if g := zm.groups[id]; g != nil {
		return len(g.Incoming)
	}
	return 0
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
