package handler

import (
	"errors"

	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/persist"
	"github.com/l1jgo/bqworld/internal/system"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

const maxNameLength = 15

// Starting equipment of a new character.
const (
	defaultArmor  = 21 // clotharmor
	defaultWeapon = 60 // sword1
)

// HandleHello processes HELLO(name[, password]). It enters a new session
// into the world and brings a dead player back.
func HandleHello(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := cleanText(r.String(), maxNameLength)
	password := ""
	if r.Remaining() > 0 {
		password = r.String()
	}
	if name == "" || r.Err() != nil {
		deps.Log.Debug("HELLO rejected: bad name", zap.Uint64("session", sess.ID), zap.Error(r.Err()))
		sess.Close()
		return
	}

	if sess.State() == packet.StateDead {
		if rec, ok := deps.profiles[sess.ID]; ok {
			delete(deps.profiles, sess.ID)
			enterWorld(sess, rec, true, deps)
			return
		}
	}

	if other := deps.World.Entities.PlayerByName(name); other != nil {
		deps.Log.Info("HELLO rejected: name in use", zap.String("name", name))
		sess.Close()
		return
	}
	if limit := deps.Config.Server.MaxPlayers; limit > 0 && deps.World.Population() >= limit {
		deps.Log.Warn("HELLO rejected: world full", zap.String("name", name), zap.Int("max", limit))
		sess.Close()
		return
	}

	sess.Name = name
	if deps.Loader == nil {
		enterWorld(sess, newRecord(name), false, deps)
		return
	}
	sess.SetState(packet.StateLoading)
	if !deps.Loader.Load(system.LoadRequest{SessionID: sess.ID, Name: name, Password: password}) {
		deps.Log.Warn("load queue full, dropping client", zap.String("name", name))
		sess.Close()
	}
}

// FinishLoad completes a HELLO once the character store answered.
func FinishLoad(sess *net.Session, res system.LoadResult, deps *Deps) {
	if sess.State() != packet.StateLoading {
		return
	}
	if res.Err != nil {
		if errors.Is(res.Err, persist.ErrBadPassword) {
			deps.Log.Info("HELLO rejected: bad password", zap.String("name", res.Name))
		} else {
			deps.Log.Error("character load failed", zap.String("name", res.Name), zap.Error(res.Err))
		}
		sess.Close()
		return
	}
	if deps.World.Entities.PlayerByName(res.Record.Name) != nil {
		deps.Log.Info("HELLO rejected: name in use", zap.String("name", res.Record.Name))
		sess.Close()
		return
	}
	enterWorld(sess, *res.Record, false, deps)
}

func newRecord(name string) persist.CharacterRecord {
	return persist.CharacterRecord{
		Name:   name,
		Level:  1,
		Armor:  defaultArmor,
		Weapon: defaultWeapon,
		X:      -1,
		Y:      -1,
	}
}

func enterWorld(sess *net.Session, rec persist.CharacterRecord, resurrect bool, deps *Deps) {
	w := deps.World
	x, y := rec.X, rec.Y
	if resurrect || !w.IsValidPosition(x, y) {
		x, y = w.Map.RandomStartingPosition(w.Rng)
	}
	level := rec.Level
	if level < 1 {
		level = 1
	}

	p := world.NewPlayer(w.Entities.NextID(world.TypePlayer), rec.Name, x, y, level)
	p.Orientation = world.OrientationUp + w.Rng.Intn(4)
	equip(p, rec.Armor, deps)
	equip(p, rec.Weapon, deps)
	if rec.HP > 0 && !resurrect {
		p.Char.SetHP(rec.HP)
	}
	p.Player.CharID = rec.ID
	p.Player.SessionID = sess.ID
	p.Player.XP = rec.XP
	p.Player.Kills = rec.Kills
	p.Player.Inventory = loadout{p.Char}

	if !w.AddPlayer(p, sess) {
		deps.Log.Error("player id collision", zap.String("id", p.ID))
		sess.Close()
		return
	}
	sess.PlayerID = p.ID
	sess.Name = rec.Name
	sess.SetState(packet.StateInWorld)

	w.Out.PushToPlayer(p.ID, packet.Welcome(p.ID, rec.Name, x, y, p.Char.HP()))
	w.Out.PushToPlayer(p.ID, packet.Inventory(p.Player.Inventory.Serialize()))
	w.PushRelevantEntityListTo(p)
	w.UpdatePopulation()
	deps.Metrics.PlayerJoined()

	deps.Log.Info("player entered",
		zap.String("name", rec.Name),
		zap.String("id", p.ID),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Bool("resurrect", resurrect),
	)
}

// HandleDisconnect removes the session's player from the world. Called once
// per closed session by the input system.
func HandleDisconnect(sess *net.Session, deps *Deps) {
	delete(deps.profiles, sess.ID)
	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	deps.Log.Info("player left", zap.String("name", p.Player.Name))
	deps.Combat.HandlePlayerVanish(p)
	deps.World.RemovePlayer(p)
	deps.World.UpdatePopulation()
	deps.Metrics.PlayerLeft()
	sess.PlayerID = ""
}

func onPlayerDied(ev event.PlayerDied, deps *Deps) {
	sess := deps.Sessions.ByPlayer(ev.PlayerID)
	if sess == nil {
		return
	}
	if p := deps.World.Entities.Get(ev.PlayerID); p != nil && p.Player != nil {
		deps.profiles[sess.ID] = system.Snapshot(p)
	}
	sess.SetState(packet.StateDead)
	sess.PlayerID = ""
	deps.Metrics.PlayerLeft()
}
