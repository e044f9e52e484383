// Package capture provides a camera recording pipeline: frames are acquired
// at a fixed cadence, persisted to disk as they arrive, encoded in chunks
// while capture is still running, and concatenated into a single movie at
// the end.
//
// Example usage:
//
//	cfg := capture.DefaultConfig()
//	cfg.SaveRoot = "/data/recordings"
//	cfg.Duration = 30 * time.Second
//	res, err := capture.Run(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Outcome, res.ArtifactPath)
package capture

import (
	"context"

	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/ffmpeg"
	logAdapter "github.com/cantin-ortiz/camera-capture-tool/internal/adapters/log"
	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/simsource"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
	"github.com/cantin-ortiz/camera-capture-tool/internal/session"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

// Config holds the recording session parameters.
// Use DefaultConfig() to get a Config with sensible defaults; at minimum
// SaveRoot must be set before calling Run.
type Config = session.Config

// Result summarizes a finished recording session.
type Result = domain.Result

// Outcome classifies how a session ended; see the Outcome* constants in
// this package.
type Outcome = domain.Outcome

// Session outcomes.
const (
	OutcomeVideoReady   = domain.OutcomeVideoReady
	OutcomeFramesOnly   = domain.OutcomeFramesOnly
	OutcomeRateFault    = domain.OutcomeRateFault
	OutcomeEncodeFailed = domain.OutcomeEncodeFailed
	OutcomeAborted      = domain.OutcomeAborted
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return session.DefaultConfig()
}

// Options customize the stack Run assembles.
type Options struct {
	// Source supplies frames; nil uses a simulated 640x480 camera.
	Source ports.FrameSource

	// Encoder produces the video artifacts; nil invokes the ffmpeg binary
	// from PATH.
	Encoder ports.Encoder

	// Logger receives pipeline diagnostics; nil logs to stderr.
	Logger ports.Logger

	// Signals carries external start/stop/quit requests. Nil starts
	// recording immediately, with cancellation of the Run context as the
	// only way to end an unbounded session.
	Signals *signals.Set
}

// Run records one session with the default stack and blocks until it
// completes. Recording starts immediately and ends when cfg.Duration
// elapses; cancelling the context aborts and keeps the captured frames.
func Run(ctx context.Context, cfg Config) (Result, error) {
	return RunWith(ctx, cfg, Options{})
}

// RunWith is Run with parts of the stack replaced.
func RunWith(ctx context.Context, cfg Config, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logAdapter.NewZerologAdapter(false)
	}
	source := opts.Source
	if source == nil {
		source = simsource.New(640, 480, cfg.Framerate)
	}
	enc := opts.Encoder
	if enc == nil {
		enc = ffmpeg.New("ffmpeg", cfg.Framerate, logger)
	}
	sig := opts.Signals
	if sig == nil {
		sig = signals.New()
		sig.RequestStart()
		cfg.LivePreview = false
	}

	sess, err := session.New(cfg, source, enc, sig, logger)
	if err != nil {
		return Result{}, err
	}
	return sess.Run(ctx)
}
