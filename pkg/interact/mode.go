package interact

// Mode is the state of the interaction machine.
type Mode int

const (
	ModeIdle     Mode = iota // no session
	ModeArmed                // session open, long-press timer pending, no movement yet
	ModeDragging             // session open, timer resolved
	ModeClicking             // pointer down on a connection body, waiting for release
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeArmed:
		return "armed"
	case ModeDragging:
		return "dragging"
	case ModeClicking:
		return "clicking"
	}
	return "unknown"
}

// Next is the transition function of the machine. It has no side effects;
// Machine.Handle applies the effects that go with each transition.
//
// A pointer-down while a session or pending click is active never changes
// the mode: the active gesture stays authoritative until it ends.
func Next(m Mode, ev PointerEvent) Mode {
	switch m {
	case ModeIdle:
		if ev.Phase != PhaseDown || !ev.Primary {
			return ModeIdle
		}
		switch {
		case ev.Target.Interactive():
			return ModeArmed
		case ev.Target.Kind == TargetConnection:
			return ModeClicking
		}
		return ModeIdle

	case ModeArmed, ModeDragging:
		switch ev.Phase {
		case PhaseMove:
			return ModeDragging
		case PhaseUp, PhaseCancel:
			return ModeIdle
		}
		return m

	case ModeClicking:
		switch ev.Phase {
		case PhaseMove, PhaseUp, PhaseCancel:
			return ModeIdle
		}
		return m
	}
	return ModeIdle
}
