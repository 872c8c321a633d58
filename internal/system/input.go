package system

import (
	"time"

	coresys "github.com/l1jgo/bqworld/internal/core/system"
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

// SessionSource hands over accepted and closed connections.
// net.Server implements it.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
}

// InputSystem accepts sessions, drains their frames through the packet
// registry and finishes asynchronous character loads. Phase 0 (Input).
type InputSystem struct {
	src        SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	loads      <-chan LoadResult
	log        *zap.Logger

	// OnDisconnect runs once for every session that closed, after its
	// remaining frames were dispatched.
	OnDisconnect func(sess *net.Session)
	// OnLoaded runs for every finished character load.
	OnLoaded func(sess *net.Session, res LoadResult)
}

func NewInputSystem(src SessionSource, registry *packet.Registry, store *net.SessionStore, maxPerTick int, loads <-chan LoadResult, log *zap.Logger) *InputSystem {
	if maxPerTick < 1 {
		maxPerTick = 1
	}
	return &InputSystem{
		src:        src,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		loads:      loads,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.acceptNew()
	s.finishLoads()

	s.store.ForEach(func(sess *net.Session) {
		s.drain(sess)
	})

	s.reapDead()
}

func (s *InputSystem) acceptNew() {
	for {
		select {
		case sess := <-s.src.NewSessions():
			s.store.Add(sess)
		default:
			return
		}
	}
}

func (s *InputSystem) finishLoads() {
	if s.loads == nil {
		return
	}
	for {
		select {
		case res := <-s.loads:
			sess := s.store.Get(res.SessionID)
			if sess == nil || sess.IsClosed() {
				s.log.Debug("load finished for a gone session", zap.Uint64("session", res.SessionID))
				continue
			}
			if s.OnLoaded != nil {
				s.OnLoaded(sess, res)
			}
		default:
			return
		}
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

func (s *InputSystem) reapDead() {
	for {
		select {
		case id := <-s.src.DeadSessions():
			if sess := s.store.Get(id); sess != nil {
				s.reap(sess)
			}
		default:
			s.reapClosed()
			return
		}
	}
}

// reapClosed catches sessions whose dead notification never arrived.
func (s *InputSystem) reapClosed() {
	s.store.ForEach(func(sess *net.Session) {
		if sess.IsClosed() {
			s.log.Debug("reaping closed session without notification", zap.Uint64("session", sess.ID))
			s.reap(sess)
		}
	})
}

func (s *InputSystem) reap(sess *net.Session) {
	// Frames sent right before the close still count.
	s.drain(sess)
	if s.OnDisconnect != nil {
		s.OnDisconnect(sess)
	}
	s.store.Remove(sess.ID)
}
