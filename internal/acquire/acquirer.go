// Package acquire implements the producer side of the pipeline: the
// time-critical loop pulling frames from the device into the ring buffer.
package acquire

import (
	"errors"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ring"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

// State tracks where the acquisition loop is in its life.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateCapturing
	StateDraining
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateArmed:
		return "Armed"
	case StateCapturing:
		return "Capturing"
	case StateDraining:
		return "Draining"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Timing records the hardware-relevant edges of one capture run. The strobe
// edges bracket the exposure window for downstream alignment of external
// recordings.
type Timing struct {
	StrobeOn   time.Time
	FirstFrame time.Time
	LastFrame  time.Time
	StrobeOff  time.Time
}

// Config holds the acquisition parameters.
type Config struct {
	// Framerate is the configured capture rate in Hz, set on the device
	// externally. Used only for post-hoc validation.
	Framerate int

	// MaxDuration stops capture automatically once elapsed. Zero means
	// unbounded (console stop only).
	MaxDuration time.Duration

	// FrameTimeout bounds each wait for the next frame. Exceeding it is a
	// device fault and stops the run.
	FrameTimeout time.Duration

	// RateTolerance is the allowed deviation between measured and configured
	// rate before a rate fault is raised, in Hz.
	RateTolerance float64

	// MinRateSamples is the minimum frame count before the rate check
	// applies; short runs carry too much edge noise to judge.
	MinRateSamples uint64
}

// Acquirer pulls frames from the source and pushes them into the ring
// buffer. It owns the capture lifecycle: arming the device, the strobe reset
// on exit, and the post-hoc frame rate validation.
type Acquirer struct {
	cfg    Config
	source ports.FrameSource
	buf    *ring.Buffer
	sig    *signals.Set
	log    ports.Logger

	state     State
	captured  uint64
	timing    Timing
	fault     error
	rateFault bool
	measured  float64
}

// New creates an acquirer. Run may be called once.
func New(cfg Config, source ports.FrameSource, buf *ring.Buffer, sig *signals.Set, logger ports.Logger) *Acquirer {
	return &Acquirer{
		cfg:    cfg,
		source: source,
		buf:    buf,
		sig:    sig,
		log:    logger,
	}
}

// Run executes the capture loop until a stop or quit is requested, the
// configured duration elapses, or a device fault occurs. It returns the
// fault, if any. The strobe reset runs unconditionally on every exit path.
func (a *Acquirer) Run() error {
	a.state = StateArmed
	a.timing.StrobeOn = time.Now()
	if err := a.source.Begin(); err != nil {
		a.state = StateStopped
		a.fault = err
		a.sig.RequestStop()
		return err
	}

	defer func() {
		a.state = StateDraining
		if err := a.source.End(); err != nil {
			// The run already ended; a failed strobe reset is diagnostic,
			// not fatal.
			a.log.Warn("strobe reset failed", ports.Err(err))
		}
		a.timing.StrobeOff = time.Now()
		a.state = StateStopped
		a.validateRate()
	}()

	if a.cfg.MaxDuration > 0 {
		a.log.Info("capture will stop automatically",
			ports.Duration("max_duration", a.cfg.MaxDuration),
		)
	}

	a.state = StateCapturing
	for !a.sig.StopRequested() && !a.sig.QuitRequested() {
		img, err := a.source.Next(a.cfg.FrameTimeout)
		if errors.Is(err, domain.ErrIncompleteFrame) {
			a.log.Warn("incomplete frame skipped", ports.Uint64("captured", a.captured))
			continue
		}
		if err != nil {
			a.log.Error("frame acquisition failed", ports.Err(err))
			a.fault = err
			a.sig.RequestStop()
			break
		}

		// The source may reuse its internal storage; take an owned copy
		// before the frame enters the buffer.
		owned := img.Clone()
		if owned.CapturedAt.IsZero() {
			owned.CapturedAt = time.Now()
		}
		if a.captured == 0 {
			a.timing.FirstFrame = owned.CapturedAt
		}
		a.buf.Put(owned)
		a.timing.LastFrame = owned.CapturedAt
		a.captured++

		if a.cfg.MaxDuration > 0 && a.timing.LastFrame.Sub(a.timing.FirstFrame) >= a.cfg.MaxDuration {
			a.log.Info("configured duration elapsed", ports.Uint64("frames", a.captured))
			a.sig.RequestStop()
		}
	}

	return a.fault
}

// validateRate compares measured against configured rate once capture ends.
// Frames already on disk are kept when a fault is raised; only final
// encoding is skipped.
func (a *Acquirer) validateRate() {
	elapsed := a.timing.LastFrame.Sub(a.timing.FirstFrame)
	if elapsed <= 0 || a.captured == 0 {
		return
	}
	a.measured = float64(a.captured) / elapsed.Seconds()

	deviation := a.measured - float64(a.cfg.Framerate)
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > a.cfg.RateTolerance && a.captured > a.cfg.MinRateSamples {
		a.rateFault = true
		a.log.Error("measured frame rate deviates from configured rate",
			ports.Float64("measured_hz", a.measured),
			ports.Int("configured_hz", a.cfg.Framerate),
			ports.Float64("tolerance_hz", a.cfg.RateTolerance),
		)
	} else {
		a.log.Info("capture complete",
			ports.Uint64("frames", a.captured),
			ports.Float64("measured_hz", a.measured),
		)
	}
}

// State returns the current loop state.
func (a *Acquirer) State() State { return a.state }

// FramesCaptured returns the number of complete frames pushed to the buffer.
func (a *Acquirer) FramesCaptured() uint64 { return a.captured }

// Timing returns the recorded capture edges.
func (a *Acquirer) Timing() Timing { return a.timing }

// MeasuredRate returns the effective capture rate in Hz, 0 before Run ends.
func (a *Acquirer) MeasuredRate() float64 { return a.measured }

// RateFault reports whether the post-hoc rate check failed.
func (a *Acquirer) RateFault() bool { return a.rateFault }

// Fault returns the device fault that ended the run, if any.
func (a *Acquirer) Fault() error { return a.fault }
