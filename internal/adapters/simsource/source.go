// Package simsource implements a ports.FrameSource that synthesizes frames
// at the configured rate. It stands in for the physical camera so the whole
// pipeline can run, and be demonstrated, without hardware attached.
package simsource

import (
	"fmt"
	"sync"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

// Source generates 8-bit grayscale test-pattern frames with a moving bar, at
// a fixed cadence paced from the Begin timestamp.
type Source struct {
	width     int
	height    int
	framerate int

	mu      sync.Mutex
	started bool
	startAt time.Time
	count   uint64

	// scratch is reused across Next calls, mirroring a real device's
	// internal buffer; callers must copy, as the port contract states.
	scratch []byte

	strobeAsserted bool
}

// New creates a simulated source.
func New(width, height, framerate int) *Source {
	return &Source{
		width:     width,
		height:    height,
		framerate: framerate,
		scratch:   make([]byte, width*height),
	}
}

// Begin arms the source and "asserts" the strobe.
func (s *Source) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("simsource: already acquiring")
	}
	s.started = true
	s.strobeAsserted = true
	s.startAt = time.Now()
	s.count = 0
	return nil
}

// Next waits until the next frame is due and returns it. The returned image
// aliases internal storage.
func (s *Source) Next(timeout time.Duration) (domain.Image, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return domain.Image{}, fmt.Errorf("simsource: not acquiring")
	}
	interval := time.Second / time.Duration(s.framerate)
	due := s.startAt.Add(time.Duration(s.count) * interval)
	s.mu.Unlock()

	wait := time.Until(due)
	if wait > timeout {
		time.Sleep(timeout)
		return domain.Image{}, domain.ErrFrameTimeout
	}
	if wait > 0 {
		time.Sleep(wait)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillPattern(s.count)
	s.count++
	return domain.Image{
		Pixels:     s.scratch,
		Width:      s.width,
		Height:     s.height,
		Stride:     s.width,
		Format:     domain.PixelFormatMono8,
		CapturedAt: due,
	}, nil
}

// End stops acquisition and returns the strobe to idle.
func (s *Source) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.strobeAsserted = false
	return nil
}

// StrobeAsserted reports the simulated strobe line state.
func (s *Source) StrobeAsserted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strobeAsserted
}

// fillPattern draws a horizontal gradient with a vertical bar that advances
// one column per frame, so encoded output visibly moves.
func (s *Source) fillPattern(frame uint64) {
	bar := int(frame) % s.width
	for y := 0; y < s.height; y++ {
		row := s.scratch[y*s.width:]
		for x := 0; x < s.width; x++ {
			v := byte(x * 255 / s.width)
			if x == bar {
				v = 255
			}
			row[x] = v
		}
	}
}
