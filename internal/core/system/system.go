package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain client messages, finish async loads
	PhaseUpdate                  // 1: timers, regen
	PhasePostUpdate              // 2: zone incoming spawns
	PhaseOutput                  // 3: flush per-player queues
	PhasePersist                 // 4: hand dirty players to the saver
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	default:
		return "unknown"
	}
}

// System is one step of the world tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
