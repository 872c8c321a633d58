package handler

import (
	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/observe"
	"github.com/l1jgo/bqworld/internal/persist"
	"github.com/l1jgo/bqworld/internal/system"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// Loader starts an asynchronous character load. system.Saver implements it.
type Loader interface {
	Load(req system.LoadRequest) bool
}

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	World    *world.World
	Catalog  *data.Catalog
	Combat   *system.CombatResolver
	Spawn    *system.SpawnManager
	Sessions *net.SessionStore
	Metrics  *observe.Metrics
	Loader   Loader // nil runs without a character store

	// profiles keeps the last snapshot of players that died so HELLO can
	// bring them back without a store round trip. Keyed by session id.
	profiles map[uint64]persist.CharacterRecord
}

// RegisterAll registers all message handlers into the registry and hooks
// the world events handlers react to.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	if deps.profiles == nil {
		deps.profiles = make(map[uint64]persist.CharacterRecord)
	}
	event.Subscribe(deps.World.Bus, func(ev event.PlayerDied) {
		onPlayerDied(ev, deps)
	})

	reg.Register(packet.OpHello,
		[]packet.SessionState{packet.StateConnected, packet.StateDead},
		func(sess any, r *packet.Reader) {
			HandleHello(sess.(*net.Session), r, deps)
		},
	)

	inWorldStates := []packet.SessionState{packet.StateInWorld}

	handlers := map[int]func(*net.Session, *packet.Reader, *Deps){
		packet.OpWho:      HandleWho,
		packet.OpZone:     HandleZone,
		packet.OpMove:     HandleMove,
		packet.OpLootMove: HandleLootMove,
		packet.OpAggro:    HandleAggro,
		packet.OpAttack:   HandleAttack,
		packet.OpHit:      HandleHit,
		packet.OpHurt:     HandleHurt,
		packet.OpChat:     HandleChat,
		packet.OpLoot:     HandleLoot,
		packet.OpTeleport: HandleTeleport,
		packet.OpOpen:     HandleOpen,
	}
	for op, fn := range handlers {
		fn := fn
		reg.Register(op, inWorldStates, func(sess any, r *packet.Reader) {
			fn(sess.(*net.Session), r, deps)
		})
	}
}

// playerOf returns the in-world player bound to sess.
func playerOf(sess *net.Session, deps *Deps) *world.Entity {
	if sess.PlayerID == "" {
		return nil
	}
	p := deps.World.Entities.Get(sess.PlayerID)
	if p == nil || p.Type != world.TypePlayer {
		return nil
	}
	return p
}

// mobByID resolves a client-supplied id to a live mob.
func mobByID(id string, deps *Deps) *world.Entity {
	m := deps.World.Entities.Character(id)
	if m == nil || m.Type != world.TypeMob {
		deps.Log.Debug("unknown mob", zap.String("id", id))
		return nil
	}
	return m
}
