// Package signals carries the user and fault intents for one recording
// session. Every component receives the same session-scoped Set instead of
// consulting process-wide flags, so independent sessions stay independent
// and tests stay deterministic.
package signals

import "sync"

// Set holds the start, stop and quit intents of one session.
//
// Stop requests a graceful drain-then-finish: remaining buffered frames are
// persisted and every pending chunk job is posted. Quit requests immediate
// abandonment with no artifact guarantee. The two must never be conflated.
type Set struct {
	mu    sync.Mutex
	start chan struct{}
	stop  chan struct{}
	quit  chan struct{}
}

// New creates an empty signal set.
func New() *Set {
	return &Set{
		start: make(chan struct{}),
		stop:  make(chan struct{}),
		quit:  make(chan struct{}),
	}
}

// RequestStart signals that recording should begin. Idempotent.
func (s *Set) RequestStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	closeOnce(s.start)
}

// RequestStop signals a graceful stop. Idempotent.
func (s *Set) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	closeOnce(s.stop)
}

// RequestQuit signals immediate abandonment. Quit implies stop so that
// loops watching only the stop flag still terminate.
func (s *Set) RequestQuit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	closeOnce(s.quit)
	closeOnce(s.stop)
}

// StartRequested reports whether a start was requested.
func (s *Set) StartRequested() bool { return closed(s.start) }

// StopRequested reports whether a stop (or quit) was requested.
func (s *Set) StopRequested() bool { return closed(s.stop) }

// QuitRequested reports whether a quit was requested.
func (s *Set) QuitRequested() bool { return closed(s.quit) }

// StartC returns a channel closed once start is requested.
func (s *Set) StartC() <-chan struct{} { return s.start }

// StopC returns a channel closed once stop is requested.
func (s *Set) StopC() <-chan struct{} { return s.stop }

// QuitC returns a channel closed once quit is requested.
func (s *Set) QuitC() <-chan struct{} { return s.quit }

func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func closed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
