package session

import "github.com/cantin-ortiz/camera-capture-tool/internal/ports"

// Phase is one stage of the recording session lifecycle. Phases advance
// strictly forward; the only branches are the early exits into Cleanup when
// the user quits before recording starts.
type Phase int

const (
	PhaseInit Phase = iota
	PhasePreview
	PhaseAwaitStart
	PhaseRecording
	PhaseStopping
	PhaseEncoding
	PhaseCleanup
	PhaseTerminated
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhasePreview:
		return "Preview"
	case PhaseAwaitStart:
		return "AwaitStart"
	case PhaseRecording:
		return "Recording"
	case PhaseStopping:
		return "Stopping"
	case PhaseEncoding:
		return "Encoding"
	case PhaseCleanup:
		return "Cleanup"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// validNext lists the allowed transitions out of each phase.
var validNext = map[Phase][]Phase{
	PhaseInit:       {PhasePreview, PhaseAwaitStart, PhaseCleanup},
	PhasePreview:    {PhaseAwaitStart, PhaseCleanup},
	PhaseAwaitStart: {PhaseRecording, PhaseCleanup},
	PhaseRecording:  {PhaseStopping},
	PhaseStopping:   {PhaseEncoding},
	PhaseEncoding:   {PhaseCleanup},
	PhaseCleanup:    {PhaseTerminated},
}

// PhaseEmitter is notified on every phase change.
type PhaseEmitter interface {
	OnPhaseChange(previous, current Phase, reason string)
}

// transition advances the session to next, which must be reachable from the
// current phase; a violation is a programming error and panics in place of
// silently corrupting the shutdown ordering.
func (s *Session) transition(next Phase, reason string) {
	allowed := false
	for _, p := range validNext[s.phase] {
		if p == next {
			allowed = true
			break
		}
	}
	if !allowed {
		panic("session: invalid phase transition " + s.phase.String() + " -> " + next.String())
	}

	prev := s.phase
	s.phase = next

	if s.emitter != nil {
		s.emitter.OnPhaseChange(prev, next, reason)
	}
	s.log.Info("phase transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
}
