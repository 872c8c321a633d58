package system

import (
	"math/rand"
	"time"

	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/observe"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// LootSink places loot on the map. SpawnManager implements it.
type LootSink interface {
	SpawnDrop(x, y, kind int) *world.Entity
}

// CombatResolver owns every aggro link and hit point change. It is the only
// code that links mobs to players.
type CombatResolver struct {
	w        *world.World
	cat      *data.Catalog
	formulas Formulas
	loot     LootSink
	cfg      config.WorldConfig
	metrics  *observe.Metrics
	log      *zap.Logger

	// Draw returns the loot roll in [0,100). Replaced in tests.
	Draw func() int
}

func NewCombatResolver(w *world.World, cat *data.Catalog, f Formulas, loot LootSink, cfg config.WorldConfig, metrics *observe.Metrics, log *zap.Logger) *CombatResolver {
	rng := w.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &CombatResolver{
		w:        w,
		cat:      cat,
		formulas: f,
		loot:     loot,
		cfg:      cfg,
		metrics:  metrics,
		log:      log,
		Draw:     func() int { return rng.Intn(100) },
	}
}

// Attack records that player is swinging at mob and shows it around.
func (c *CombatResolver) Attack(player, mob *world.Entity) {
	if mob.Char == nil || !mob.Alive() {
		return
	}
	player.Char.Target = mob.ID
	c.w.Out.PushToAdjacentGroups(player.Group, packet.Attack(player.ID, mob.ID), player.ID)
}

// Hit resolves a player's blow against mob.
func (c *CombatResolver) Hit(player, mob *world.Entity) {
	if mob.Type != world.TypeMob || !mob.Alive() || !player.Alive() {
		return
	}
	dmg := c.formulas.CalcDamage(player.Char.WeaponLevel, mob.Char.ArmorLevel)
	if dmg <= 0 {
		return
	}
	c.IncreaseHate(mob, player.ID, dmg)
	c.ApplyDamage(mob, player, dmg)
}

// Hurt resolves mob's blow against player.
func (c *CombatResolver) Hurt(player, mob *world.Entity) {
	if mob.Type != world.TypeMob || !mob.Alive() || !player.Alive() {
		return
	}
	dmg := c.formulas.CalcDamage(mob.Char.WeaponLevel, player.Char.ArmorLevel)
	c.ApplyDamage(player, mob, dmg)
}

// ApplyDamage takes points off target and announces it. A target brought to
// zero dies; attacker may be nil for environmental damage.
func (c *CombatResolver) ApplyDamage(target, attacker *world.Entity, points int) {
	if target.Char == nil || !target.Alive() {
		return
	}
	if target.Type == world.TypePlayer && target.Char.Invincible {
		return
	}
	target.Char.SetHP(target.Char.HP() - points)
	if target.Player != nil {
		target.Player.Dirty = true
	}

	attackerID := ""
	if attacker != nil {
		attackerID = attacker.ID
	}
	c.w.Out.PushToAdjacentGroups(target.Group, packet.Health(target.ID, target.Char.HP(), target.Char.MaxHP(), false), "")
	c.w.Out.PushToAdjacentGroups(target.Group, packet.Damage(target.ID, points, attackerID), "")

	if target.Char.HP() <= 0 {
		c.kill(target, attacker)
	}
}

// kill is the single dispatch point for per-variant death handling.
func (c *CombatResolver) kill(target, attacker *world.Entity) {
	c.metrics.RecordKill(target.Type.String())
	switch target.Type {
	case world.TypeMob:
		c.killMob(target, attacker)
	case world.TypePlayer:
		c.killPlayer(target, attacker)
	default:
		c.w.Despawn(target)
	}
}

func (c *CombatResolver) killMob(mob, killer *world.Entity) {
	mob.Mob.Dead = true
	haters := mob.Mob.Hate.IDs()
	killerID := ""
	if killer != nil && killer.Type == world.TypePlayer {
		killerID = killer.ID
		c.creditKill(killer, mob)
	}

	// DESPAWN goes out before DROP.
	c.w.Out.PushToAdjacentGroups(mob.Group, packet.Despawn(mob.ID), "")
	if drop, ok := c.rollLoot(mob); ok && c.loot != nil {
		if item := c.loot.SpawnDrop(mob.X, mob.Y, drop.Kind); item != nil {
			c.w.Out.PushToAdjacentGroups(mob.Group, packet.Drop(mob.ID, item.ID, item.Kind, haters, nil), "")
		}
	}
	c.w.RemoveEntity(mob)
	event.Publish(c.w.Bus, event.MobKilled{MobID: mob.ID, Kind: mob.Kind, KillerID: killerID})
}

func (c *CombatResolver) rollLoot(mob *world.Entity) (data.Drop, bool) {
	if c.cat == nil {
		return data.Drop{}, false
	}
	tmpl := c.cat.Mobs.Get(mob.Kind)
	if tmpl == nil || len(tmpl.Drops) == 0 {
		return data.Drop{}, false
	}
	return data.RollLoot(tmpl.Drops, c.Draw())
}

func (c *CombatResolver) creditKill(p, mob *world.Entity) {
	c.w.Out.PushToPlayer(p.ID, packet.Kill(mob.Kind))
	p.Player.Kills++

	gained := c.formulas.KillXP(mob.Mob.XP, mob.Char.Level, p.Char.Level)
	if gained <= 0 {
		return
	}
	p.Player.XP += gained
	p.Player.Dirty = true

	level := c.formulas.LevelFromXP(p.Player.XP)
	if level > p.Char.Level {
		p.Char.SetLevel(level)
		c.w.Out.PushToPlayer(p.ID, packet.Level(level))
		c.w.Out.PushToPlayer(p.ID, packet.HitPoints(p.Char.MaxHP()))
	}
	c.w.Out.PushToPlayer(p.ID, packet.XP(p.Player.XP, xpToReach(c.formulas, p.Char.Level+1), gained))
}

func (c *CombatResolver) killPlayer(p, attacker *world.Entity) {
	attackerID := ""
	if attacker != nil {
		attackerID = attacker.ID
	}
	c.log.Info("player died", zap.String("player", p.Player.Name), zap.String("by", attackerID))
	event.Publish(c.w.Bus, event.PlayerDied{PlayerID: p.ID, Name: p.Player.Name, AttackerID: attackerID})
	c.HandlePlayerVanish(p)
	c.w.RemovePlayer(p)
	c.w.UpdatePopulation()
}

// RegenTick heals every wounded live character by the regen formula. Player
// gains are shown to the surrounding groups, the player included; mob hit
// points are not on the wire.
func (c *CombatResolver) RegenTick() {
	regen := func(e *world.Entity) {
		if !e.Alive() || e.Char.HasFullHealth() {
			return
		}
		if e.Char.Heal(c.formulas.CalcRegen(e.Char.MaxHP())) == 0 {
			return
		}
		if e.Type == world.TypePlayer {
			c.w.Out.PushToAdjacentGroups(e.Group, packet.Health(e.ID, e.Char.HP(), e.Char.MaxHP(), true), "")
		}
	}
	c.w.Entities.Players(regen)
	c.w.Entities.Mobs(regen)
}

// FollowAttackers drags the mobs attacking p along after it moves. A mob
// pulled too far from its spawn point gives up.
func (c *CombatResolver) FollowAttackers(p *world.Entity) {
	for _, mid := range p.Char.Attackers.IDs() {
		mob := c.w.Entities.Character(mid)
		if mob == nil || mob.Mob == nil {
			continue
		}
		if c.cfg.ChaseLimit > 0 && p.Distance(mob.Mob.SpawnX, mob.Mob.SpawnY) > c.cfg.ChaseLimit {
			c.Disengage(mob)
			continue
		}
		if mob.Distance(p.X, p.Y) <= 1 {
			continue
		}
		if x, y, ok := c.positionNextTo(p); ok {
			c.moveCharacter(mob, x, y)
		}
	}
}

var neighbourOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func (c *CombatResolver) positionNextTo(target *world.Entity) (int, int, bool) {
	for _, off := range neighbourOffsets {
		x, y := target.X+off[0], target.Y+off[1]
		if c.w.IsFree(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

// GrantInvincibility makes p ignore damage for d. A new grant replaces the
// running one.
func (c *CombatResolver) GrantInvincibility(p *world.Entity, d time.Duration) {
	if p.Char.InvincibleTask != 0 {
		c.w.Timers.Cancel(p.Char.InvincibleTask)
	}
	p.Char.Invincible = true
	pid := p.ID
	p.Char.InvincibleTask = c.w.Timers.Schedule(d, func() {
		if cur := c.w.Entities.Character(pid); cur != nil {
			cur.Char.Invincible = false
			cur.Char.InvincibleTask = 0
		}
	})
}
