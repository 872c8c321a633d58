package system

import (
	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// IncreaseHate adds points to mob's grudge against playerID. A live mob
// without a live target picks one right away.
func (c *CombatResolver) IncreaseHate(mob *world.Entity, playerID string, points int) {
	if mob.Mob == nil {
		return
	}
	p := c.w.Entities.Character(playerID)
	if p == nil || p.Type != world.TypePlayer {
		c.log.Debug("hate for unknown player", zap.String("mob", mob.ID), zap.String("player", playerID))
		return
	}
	mob.Mob.Hate.Add(playerID, points)
	p.Char.Haters.Add(mob.ID)

	if mob.Alive() && !c.hasLiveTarget(mob) {
		c.SelectTarget(mob, 1)
	}
}

func (c *CombatResolver) hasLiveTarget(mob *world.Entity) bool {
	if mob.Char.Target == "" {
		return false
	}
	t := c.w.Entities.Character(mob.Char.Target)
	return t != nil && t.Alive()
}

// candidates returns the live players mob hates, most hated first.
func (c *CombatResolver) candidates(mob *world.Entity, exclude string) []*world.Entity {
	var out []*world.Entity
	for _, id := range mob.Mob.Hate.Ranked() {
		if id == exclude {
			continue
		}
		if p := c.w.Entities.Character(id); p != nil && p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// SelectTarget points mob at the player holding the rank-th highest hate
// (1 = most hated). A rank past the end of the list falls back to the most
// hated player. It returns the chosen player, or nil if nobody qualifies.
func (c *CombatResolver) SelectTarget(mob *world.Entity, rank int) *world.Entity {
	return c.chooseTarget(mob, rank, "")
}

func (c *CombatResolver) chooseTarget(mob *world.Entity, rank int, exclude string) *world.Entity {
	if mob.Mob == nil || !mob.Alive() {
		return nil
	}
	list := c.candidates(mob, exclude)
	if len(list) == 0 {
		return nil
	}
	idx := rank - 1
	if idx < 0 || idx >= len(list) {
		idx = 0
	}
	p := list[idx]
	if p.Char.Attackers.Has(mob.ID) {
		return p
	}
	world.Link(c.w.Entities, mob, p)
	c.w.Out.PushToAdjacentGroups(mob.Group, packet.Attack(mob.ID, p.ID), mob.ID)
	event.Publish(c.w.Bus, event.MobAggro{MobID: mob.ID, PlayerID: p.ID})
	if mob.Distance(p.X, p.Y) > 1 {
		if x, y, ok := c.positionNextTo(p); ok {
			c.moveCharacter(mob, x, y)
		}
	}
	return p
}

// RemoveAttacker ends mob's attack on player.
func (c *CombatResolver) RemoveAttacker(player, mob *world.Entity) {
	world.Unlink(mob, player)
}

// HandlePlayerVanish runs when a player dies, teleports or leaves. Each of
// its attackers turns to the most hated other live player or goes idle, and
// every mob that hated it forgets it after the forget delay.
func (c *CombatResolver) HandlePlayerVanish(p *world.Entity) {
	for _, mid := range p.Char.Attackers.IDs() {
		mob := c.w.Entities.Character(mid)
		if mob == nil {
			p.Char.Attackers.Remove(mid)
			continue
		}
		world.Unlink(mob, p)
		c.chooseTarget(mob, 1, p.ID)
	}
	for _, mid := range p.Char.Haters.IDs() {
		c.scheduleForget(mid, p.ID)
	}
	p.Char.Haters.Clear()
}

func (c *CombatResolver) scheduleForget(mobID, playerID string) {
	c.w.Timers.Schedule(c.cfg.ForgetDelay, func() {
		mob := c.w.Entities.Character(mobID)
		if mob == nil || mob.Mob == nil {
			return
		}
		mob.Mob.Hate.Remove(playerID)
		if p := c.w.Entities.Character(playerID); p != nil {
			p.Char.Haters.Remove(mobID)
		}
		if mob.Char.Target == "" && mob.Mob.Hate.Len() == 0 {
			c.returnToSpawn(mob)
		}
	})
}

// Disengage makes mob drop every grudge and walk home.
func (c *CombatResolver) Disengage(mob *world.Entity) {
	world.ClearAggro(c.w.Entities, mob)
	for _, pid := range mob.Mob.Hate.IDs() {
		if p := c.w.Entities.Character(pid); p != nil {
			p.Char.Haters.Remove(mob.ID)
		}
	}
	mob.Mob.Hate.Clear()
	c.returnToSpawn(mob)
}

func (c *CombatResolver) returnToSpawn(mob *world.Entity) {
	if mob.X == mob.Mob.SpawnX && mob.Y == mob.Mob.SpawnY {
		return
	}
	c.moveCharacter(mob, mob.Mob.SpawnX, mob.Mob.SpawnY)
}

// moveCharacter relocates a mob and tells whoever can see it.
func (c *CombatResolver) moveCharacter(e *world.Entity, x, y int) {
	changed := c.w.MoveEntity(e, x, y)
	c.w.Out.PushToAdjacentGroups(e.Group, packet.Move(e.ID, x, y), "")
	if changed {
		c.w.HandleZoneChange(e)
	}
}
