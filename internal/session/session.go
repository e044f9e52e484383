// Package session orchestrates a full recording run: directory setup, the
// live preview, the capture/persist/encode pipeline, the final artifact, and
// cleanup. A Session moves through a fixed sequence of phases and the
// transitions between them carry the shutdown ordering guarantees.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/cantin-ortiz/camera-capture-tool/internal/acquire"
	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/fs"
	"github.com/cantin-ortiz/camera-capture-tool/internal/archive"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/encodepool"
	"github.com/cantin-ortiz/camera-capture-tool/internal/metadata"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ring"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

const (
	sessionDirPrefix = "VIDEO_"
	sessionDirFormat = "20060102_150405"
	lockFileName     = ".camrec.lock"
)

// Session is a single recording run. Create one with New, drive it with Run,
// then read the Result. A Session is not reusable.
type Session struct {
	cfg     Config
	source  ports.FrameSource
	enc     ports.Encoder
	sig     *signals.Set
	log     ports.Logger
	emitter PhaseEmitter

	phase      Phase
	id         uuid.UUID
	startedAt  time.Time
	baseName   string
	sessionDir string
	lock       *flock.Flock
}

// New creates a session. The signal set carries the operator's start, stop
// and quit requests; it is shared with whatever front end drives the run.
func New(cfg Config, source ports.FrameSource, enc ports.Encoder, sig *signals.Set, logger ports.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", domain.ErrInvalidConfig)
	}
	return &Session{
		cfg:    cfg,
		source: source,
		enc:    enc,
		sig:    sig,
		log:    logger,
		phase:  PhaseInit,
		id:     uuid.New(),
	}, nil
}

// SetPhaseEmitter registers an observer for phase changes. Must be called
// before Run.
func (s *Session) SetPhaseEmitter(e PhaseEmitter) { s.emitter = e }

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Dir returns the frame directory. Empty until Run has set it up.
func (s *Session) Dir() string { return s.sessionDir }

// Run drives the session through its lifecycle and returns the outcome.
// Cancelling the context is equivalent to a quit request: recording stops,
// queued encodes are discarded and the frames are kept on disk.
//
// Setup failures (a held lock, an unwritable save root) return an error with
// a zero Result. Once capture has started the run always completes with a
// Result; device and encode faults are reported through Result.Outcome.
func (s *Session) Run(ctx context.Context) (domain.Result, error) {
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			s.sig.RequestQuit()
		case <-watchDone:
		}
	}()

	if err := s.setup(); err != nil {
		return domain.Result{}, err
	}
	defer s.lock.Unlock()

	if s.cfg.LivePreview {
		s.transition(PhasePreview, "streaming for visual confirmation")
		if err := s.preview(); err != nil {
			s.log.Error("preview failed", ports.Err(err))
		}
	}

	s.transition(PhaseAwaitStart, "waiting for start request")
	select {
	case <-s.sig.StartC():
	case <-s.sig.QuitC():
		return s.abortEarly("quit before start"), nil
	}
	if s.sig.QuitRequested() {
		return s.abortEarly("quit before start"), nil
	}

	s.transition(PhaseRecording, "start requested")
	acq, arch, pool, archDone := s.record()

	s.transition(PhaseStopping, "capture finished")
	archErr := <-archDone

	var forced bool
	if pool != nil {
		if s.sig.QuitRequested() {
			pool.Abort()
			forced = true
		} else if err := pool.Shutdown(s.cfg.ShutdownTimeout); err != nil {
			s.log.Error("encoder pool shutdown", ports.Err(err))
			forced = true
		}
	}

	if err := s.writeMetadata(acq, arch); err != nil {
		s.log.Error("metadata sidecar write failed", ports.Err(err))
	}

	s.transition(PhaseEncoding, "pipeline drained")
	result := s.finish(ctx, acq, arch, pool, archErr, forced)

	s.transition(PhaseCleanup, result.Outcome.String())
	s.cleanup(&result)

	s.transition(PhaseTerminated, "session complete")
	return result, nil
}

// setup creates the session directory and takes the save root lock. The lock
// serializes recorders sharing a save root; a held lock means another
// session is live.
func (s *Session) setup() error {
	if err := os.MkdirAll(s.cfg.SaveRoot, 0o755); err != nil {
		return fmt.Errorf("camrec: create save root: %w", err)
	}

	s.lock = flock.New(filepath.Join(s.cfg.SaveRoot, lockFileName))
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("camrec: acquire save root lock: %w", err)
	}
	if !locked {
		return domain.ErrSessionActive
	}

	s.startedAt = time.Now()
	s.baseName = sessionDirPrefix + s.startedAt.Format(sessionDirFormat)
	s.sessionDir = filepath.Join(s.cfg.SaveRoot, s.baseName)
	if err := os.Mkdir(s.sessionDir, 0o755); err != nil {
		s.lock.Unlock()
		return fmt.Errorf("camrec: create session directory: %w", err)
	}

	s.log.Info("session ready",
		ports.String("session_id", s.id.String()),
		ports.String("dir", s.sessionDir),
	)
	return nil
}

// preview streams and discards frames until a start or quit request. The
// device is stopped again before recording arms it, so recording always
// begins on a fresh strobe edge.
func (s *Session) preview() error {
	if err := s.source.Begin(); err != nil {
		return err
	}
	defer s.source.End()

	for !s.sig.StartRequested() && !s.sig.QuitRequested() {
		if _, err := s.source.Next(s.cfg.FrameTimeout); err != nil {
			return err
		}
	}
	return nil
}

// record wires the pipeline and runs capture to completion. The acquirer
// runs on the calling goroutine; the archiver's completion channel is
// returned so Stopping can join it after the buffer is closed.
func (s *Session) record() (*acquire.Acquirer, *archive.Archiver, *encodepool.Pool, <-chan error) {
	buf := ring.New(s.cfg.BufferCapacity())
	jobs := make(chan domain.ChunkJob, jobQueueCapacity)

	store, err := fs.NewFrameStore(s.sessionDir, s.cfg.JPEGQuality)
	if err != nil {
		// The directory exists; this only fails on a bad quality value,
		// which Validate has already excluded.
		panic(err)
	}

	var pool *encodepool.Pool
	concurrent := s.cfg.GenerateVideo && s.cfg.Chunked
	if concurrent {
		manifest := fs.NewManifestFile(s.sessionDir)
		pool = encodepool.New(s.cfg.EncodeWorkers, jobs, s.enc, manifest, s.sessionDir, s.log)
		pool.Start(context.Background())
	}

	arch := archive.New(archive.Config{
		FramesPerChunk: s.cfg.FramesPerChunk(),
		LagThreshold:   s.cfg.LagThreshold,
		PostJobs:       concurrent,
	}, buf, store, jobs, s.sig, s.log)

	archDone := make(chan error, 1)
	go func() {
		archDone <- arch.Run()
	}()

	acq := acquire.New(acquire.Config{
		Framerate:      s.cfg.Framerate,
		MaxDuration:    s.cfg.Duration,
		FrameTimeout:   s.cfg.FrameTimeout,
		RateTolerance:  s.cfg.RateTolerance,
		MinRateSamples: s.cfg.MinRateSamples,
	}, s.source, buf, s.sig, s.log)

	if err := acq.Run(); err != nil {
		s.log.Error("capture fault", ports.Err(err))
	}

	// No more producers. Stop lets the archiver drain the remainder and
	// exit, which in turn closes the jobs channel for the pool.
	buf.Stop()
	return acq, arch, pool, archDone
}

// finish settles the outcome and produces the final artifact where one is
// due. The rate fault check gates encoding entirely: a session recorded off
// its configured rate would play back at the wrong speed, so the frames are
// kept for manual salvage instead.
func (s *Session) finish(ctx context.Context, acq *acquire.Acquirer, arch *archive.Archiver, pool *encodepool.Pool, archErr error, forced bool) domain.Result {
	result := domain.Result{
		SessionID:       s.id.String(),
		SessionDir:      s.sessionDir,
		FramesCaptured:  acq.FramesCaptured(),
		FramesPersisted: arch.Consumed(),
		MeasuredRate:    acq.MeasuredRate(),
		CaptureFault:    acq.Fault(),
	}
	if pool != nil {
		result.ChunksEncoded = len(pool.Results())
	}

	switch {
	case s.sig.QuitRequested():
		result.Outcome = domain.OutcomeAborted
		s.log.Warn("session aborted, frames kept", ports.String("dir", s.sessionDir))
		return result

	case !s.cfg.GenerateVideo:
		result.Outcome = domain.OutcomeFramesOnly
		return result

	case acq.RateFault():
		result.Outcome = domain.OutcomeRateFault
		s.log.Error("frame rate outside tolerance, encode skipped",
			ports.Float64("measured_hz", acq.MeasuredRate()),
			ports.Int("configured_hz", s.cfg.Framerate),
		)
		return result

	case archErr != nil:
		result.Outcome = domain.OutcomeEncodeFailed
		s.log.Error("frame set incomplete, no artifact produced", ports.Err(archErr))
		return result
	}

	artifact := filepath.Join(s.cfg.SaveRoot, s.baseName+".mp4")

	if pool != nil {
		manifest := fs.NewManifestFile(s.sessionDir)
		paths, err := manifest.Load()
		if err != nil {
			s.log.Error("manifest load failed", ports.Err(err))
			result.Outcome = domain.OutcomeEncodeFailed
			return result
		}
		if err := s.enc.Concatenate(ctx, paths, artifact); err != nil {
			s.log.Error("concatenation failed", ports.Err(err))
			result.Outcome = domain.OutcomeEncodeFailed
			return result
		}
		if err := manifest.Discard(); err != nil {
			s.log.Warn("manifest discard failed", ports.Err(err))
		}
		result.ChunksDropped = pool.Dropped()
		if result.ChunksDropped > 0 || forced {
			s.log.Warn("final artifact has gaps",
				ports.Int("chunks_dropped", result.ChunksDropped),
				ports.Bool("shutdown_forced", forced),
			)
		}
	} else {
		if err := s.enc.EncodeSequential(ctx, s.sessionDir, artifact); err != nil {
			s.log.Error("encode failed", ports.Err(err))
			result.Outcome = domain.OutcomeEncodeFailed
			return result
		}
		result.ChunksEncoded = 1
	}

	result.ArtifactPath = artifact
	result.VideoSuccess = true
	result.Outcome = domain.OutcomeVideoReady
	return result
}

// cleanup removes the frame directory when the run earned it: deletion was
// requested and the complete artifact exists. Every other path keeps the
// frames.
func (s *Session) cleanup(result *domain.Result) {
	if !s.cfg.DeleteFrames || !result.VideoSuccess {
		return
	}
	// A device fault truncated the capture; the artifact covers only part of
	// the intended window, so the frames stay for manual salvage.
	if result.CaptureFault != nil {
		s.log.Warn("capture faulted, frames kept", ports.Err(result.CaptureFault))
		return
	}
	if err := os.RemoveAll(s.sessionDir); err != nil {
		s.log.Error("frame directory removal failed", ports.Err(err))
		return
	}
	result.FramesDeleted = true
	s.log.Info("frame directory removed", ports.String("dir", s.sessionDir))
}

// abortEarly settles a session that quit before capture began. The empty
// session directory is removed; nothing of value is in it.
func (s *Session) abortEarly(reason string) domain.Result {
	s.transition(PhaseCleanup, reason)
	if err := os.Remove(s.sessionDir); err != nil {
		s.log.Warn("session directory removal failed", ports.Err(err))
	}
	s.transition(PhaseTerminated, reason)
	return domain.Result{
		SessionID:  s.id.String(),
		SessionDir: s.sessionDir,
		Outcome:    domain.OutcomeAborted,
	}
}

// writeMetadata records the run parameters and timing next to the session
// directory, in the "Variable,Value" sidecar format downstream analysis
// tooling reads.
func (s *Session) writeMetadata(acq *acquire.Acquirer, arch *archive.Archiver) error {
	timing := acq.Timing()
	rows := []metadata.Row{
		metadata.String("session_id", s.id.String()),
		metadata.String("save_path", s.sessionDir),
		metadata.Int("framerate_hz", s.cfg.Framerate),
		metadata.Int("strobe_line", s.cfg.StrobeLine),
		metadata.Float("duration_s", s.cfg.Duration.Seconds()),
		metadata.Float("chunk_duration_s", s.cfg.ChunkDuration.Seconds()),
		metadata.Bool("generate_video", s.cfg.GenerateVideo),
		metadata.Bool("delete_frames", s.cfg.DeleteFrames),
		metadata.Bool("concurrent_encode", s.cfg.Chunked),
		metadata.Float("buffer_multiplier", s.cfg.BufferMultiplier),
		metadata.Int("jpeg_quality", s.cfg.JPEGQuality),
		metadata.Time("strobe_on", timing.StrobeOn),
		metadata.Time("first_frame", timing.FirstFrame),
		metadata.Time("last_frame", timing.LastFrame),
		metadata.Time("strobe_off", timing.StrobeOff),
		metadata.Uint64("frames_captured", acq.FramesCaptured()),
		metadata.Uint64("frames_persisted", arch.Consumed()),
		metadata.Float("measured_rate_hz", acq.MeasuredRate()),
	}
	return metadata.Write(filepath.Join(s.cfg.SaveRoot, s.baseName+".csv"), rows)
}
