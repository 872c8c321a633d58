package handler

import (
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
)

// HandleAggro processes AGGRO(mobId): the player walked into a mob's aggro
// range.
func HandleAggro(sess *net.Session, r *packet.Reader, deps *Deps) {
	mobID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	if mob := mobByID(mobID, deps); mob != nil {
		deps.Combat.IncreaseHate(mob, p.ID, deps.Config.World.AggroHate)
	}
}

// HandleAttack processes ATTACK(mobId): the player starts swinging.
func HandleAttack(sess *net.Session, r *packet.Reader, deps *Deps) {
	mobID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	if mob := mobByID(mobID, deps); mob != nil {
		deps.Combat.Attack(p, mob)
	}
}

// HandleHit processes HIT(mobId): one of the player's blows landed.
func HandleHit(sess *net.Session, r *packet.Reader, deps *Deps) {
	mobID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	if mob := mobByID(mobID, deps); mob != nil {
		deps.Combat.Hit(p, mob)
	}
}

// HandleHurt processes HURT(mobId): a mob's blow landed on the player.
func HandleHurt(sess *net.Session, r *packet.Reader, deps *Deps) {
	mobID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	if mob := mobByID(mobID, deps); mob != nil {
		deps.Combat.Hurt(p, mob)
	}
}
