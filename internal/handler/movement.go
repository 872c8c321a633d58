package handler

import (
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// HandleMove processes MOVE(x, y). The position is applied when the tile is
// walkable; the player drops its target and its attackers follow.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y := r.Int(), r.Int()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() || r.Err() != nil {
		return
	}
	if !deps.World.IsValidPosition(x, y) {
		deps.Log.Debug("MOVE to invalid tile", zap.String("player", p.Player.Name), zap.Int("x", x), zap.Int("y", y))
		return
	}
	p.Char.Target = ""
	movePlayer(p, x, y, packet.Move(p.ID, x, y), deps)
}

// HandleLootMove processes LOOTMOVE(x, y, itemId): a move toward an item
// the player is about to pick up.
func HandleLootMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y := r.Int(), r.Int()
	itemID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() || r.Err() != nil {
		return
	}
	item := deps.World.Entities.Get(itemID)
	if item == nil || item.Type != world.TypeItem || !deps.World.IsValidPosition(x, y) {
		return
	}
	p.Char.Target = ""
	movePlayer(p, x, y, packet.LootMove(p.ID, item.ID), deps)
}

func movePlayer(p *world.Entity, x, y int, msg packet.Message, deps *Deps) {
	w := deps.World
	changed := w.MoveEntity(p, x, y)
	w.Out.PushToAdjacentGroups(p.Group, msg, p.ID)
	if changed {
		w.HandleZoneChange(p)
	}
	deps.Combat.FollowAttackers(p)
	p.Player.Dirty = true
}

// HandleZone processes ZONE: the client crossed a zone border. Membership
// already follows every move, so this only catches up if it lagged.
func HandleZone(sess *net.Session, _ *packet.Reader, deps *Deps) {
	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	if deps.World.Zones.UpdateMembership(p) {
		deps.World.HandleZoneChange(p)
	}
}

// HandleTeleport processes TELEPORT(x, y). Mobs chasing the player lose it
// and the entity list is rebuilt around the destination.
func HandleTeleport(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y := r.Int(), r.Int()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() || r.Err() != nil {
		return
	}
	w := deps.World
	if !w.IsValidPosition(x, y) {
		return
	}
	p.Char.Target = ""
	changed := w.MoveEntity(p, x, y)
	w.Out.PushToAdjacentGroups(p.Group, packet.Teleport(p.ID, x, y), "")
	deps.Combat.HandlePlayerVanish(p)
	if changed {
		w.HandleZoneChange(p)
	} else {
		w.PushRelevantEntityListTo(p)
	}
	p.Player.Dirty = true
}

// HandleWho processes WHO(ids...): the client asks for the state of
// entities it learned about from LIST.
func HandleWho(sess *net.Session, r *packet.Reader, deps *Deps) {
	ids := r.IDs()
	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	for _, id := range ids {
		e := deps.World.Entities.Get(id)
		if e == nil {
			continue
		}
		deps.World.Out.PushToPlayer(p.ID, packet.Spawn(e.State()))
	}
}
