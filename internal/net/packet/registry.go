package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateConnected SessionState = iota // awaiting HELLO
	StateLoading                       // HELLO accepted, character load in flight
	StateInWorld                       // playing
	StateDead                          // died; HELLO re-enters
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateLoading:
		return "Loading"
	case StateInWorld:
		return "InWorld"
	case StateDead:
		return "Dead"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for message handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps opcodes to handlers with state-based access control.
type Registry struct {
	handlers map[int]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[int]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry) Register(opcode int, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Handles reports whether opcode has a registered handler.
func (reg *Registry) Handles(opcode int) bool {
	_, ok := reg.handlers[opcode]
	return ok
}

// Dispatch decodes one client frame, validates the session state, and calls
// the handler. Unknown opcodes are ignored.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	r, err := Decode(data)
	if err != nil {
		return err
	}
	opcode := r.Opcode()
	reg.log.Debug("message received",
		zap.String("op", OpName(opcode)),
		zap.Int("size", len(data)),
		zap.Stringer("state", state),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unknown opcode", zap.Int("opcode", opcode), zap.Stringer("state", state))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Debug("opcode not allowed in state",
			zap.String("op", OpName(opcode)),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("opcode %s not allowed in state %s", OpName(opcode), state)
	}

	return reg.safeCall(entry.fn, sess, r, opcode)
}

// safeCall executes a handler with panic recovery so one bad message cannot
// take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("op", OpName(opcode)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
