// Package archive implements the consumer side of the pipeline: draining the
// ring buffer to disk and deciding when encode jobs are posted.
//
// Job posting is adaptive. Submitting an encode job costs scheduling and I/O
// overhead, so while the archiver is lagging behind the producer the job for
// a finished chunk is deferred rather than contending with the disk. Every
// deferred job is posted after the producer stops and the buffer drains, so
// no frames are ever left unencoded.
package archive

import (
	"fmt"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ring"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

// DefaultLagThreshold is the lag, in frames, above which chunk job posting
// is deferred in favor of disk throughput.
const DefaultLagThreshold = 50

// Config holds the archiver parameters.
type Config struct {
	// FramesPerChunk is the encode window size: framerate times chunk
	// duration.
	FramesPerChunk uint64

	// LagThreshold is the deferral cutoff in frames.
	LagThreshold uint64

	// PostJobs enables chunk job submission. False in sequential or
	// frames-only mode, where the jobs channel is closed untouched.
	PostJobs bool
}

// Archiver drains the ring buffer, persists every frame, and posts chunk
// jobs at window boundaries subject to flow control. It is the sole sender
// on the jobs channel and closes it on exit.
//
// A persistence failure is fatal: the run is stopped and the remaining
// buffered frames are discarded so the blocked producer can finish. The
// alternative skip-and-continue policy would silently hide frame loss.
type Archiver struct {
	cfg   Config
	buf   *ring.Buffer
	store ports.FrameStore
	jobs  chan<- domain.ChunkJob
	sig   *signals.Set
	log   ports.Logger

	consumed   uint64
	lastPosted int64
	posted     int
	err        error
}

// New creates an archiver. Run may be called once.
func New(cfg Config, buf *ring.Buffer, store ports.FrameStore, jobs chan<- domain.ChunkJob, sig *signals.Set, logger ports.Logger) *Archiver {
	if cfg.LagThreshold == 0 {
		cfg.LagThreshold = DefaultLagThreshold
	}
	return &Archiver{
		cfg:        cfg,
		buf:        buf,
		store:      store,
		jobs:       jobs,
		sig:        sig,
		log:        logger,
		lastPosted: -1,
	}
}

// Run consumes the buffer until it is stopped and drained, then flushes all
// deferred and partial chunk jobs and closes the jobs channel.
func (w *Archiver) Run() error {
	defer close(w.jobs)

	failed := false
	for {
		frame, ok := w.buf.Get()
		if !ok {
			break
		}
		if failed {
			// Keep draining so a producer blocked on a full buffer can
			// observe the stop; the frames themselves are lost.
			continue
		}

		if err := w.store.Write(frame); err != nil {
			w.err = fmt.Errorf("persist frame %d: %w", frame.Index, err)
			w.log.Error("frame persistence failed, stopping run", ports.Err(w.err))
			w.sig.RequestStop()
			failed = true
			continue
		}

		w.consumed = frame.Index + 1
		lag := w.buf.TotalWritten() - w.consumed
		w.log.Debug("frame persisted",
			ports.Uint64("index", frame.Index),
			ports.Uint64("lag", lag),
		)

		w.maybePostBoundary(lag)
	}

	if !failed {
		w.flushDeferred()
	}
	return w.err
}

// maybePostBoundary posts the job for a chunk whose window just completed,
// unless the archiver is lagging past the threshold.
func (w *Archiver) maybePostBoundary(lag uint64) {
	if !w.cfg.PostJobs || w.consumed == 0 || w.consumed%w.cfg.FramesPerChunk != 0 {
		return
	}

	chunk := int64(w.consumed/w.cfg.FramesPerChunk) - 1
	if chunk <= w.lastPosted {
		return
	}

	if lag >= w.cfg.LagThreshold {
		// Disk is the bottleneck; postpone submission to the post-stop
		// flush rather than amplifying the backlog.
		w.log.Info("deferring chunk job, lag too high",
			ports.Uint64("chunk", uint64(chunk)+1),
			ports.Uint64("lag", lag),
			ports.Uint64("threshold", w.cfg.LagThreshold),
		)
		return
	}

	// Post every pending window up to this boundary so jobs always leave in
	// ascending index order, including ones deferred at earlier boundaries.
	for c := w.lastPosted + 1; c <= chunk; c++ {
		w.post(uint64(c), uint64(c)*w.cfg.FramesPerChunk, uint32(w.cfg.FramesPerChunk))
	}
	w.lastPosted = chunk
}

// flushDeferred posts every full-window job skipped by flow control, in
// ascending index order, then the final partial window if one remains.
func (w *Archiver) flushDeferred() {
	if !w.cfg.PostJobs {
		return
	}

	fullChunks := w.consumed / w.cfg.FramesPerChunk
	for chunk := w.lastPosted + 1; chunk < int64(fullChunks); chunk++ {
		w.log.Info("posting deferred chunk job", ports.Uint64("chunk", uint64(chunk)+1))
		w.post(uint64(chunk), uint64(chunk)*w.cfg.FramesPerChunk, uint32(w.cfg.FramesPerChunk))
	}

	remainder := w.consumed % w.cfg.FramesPerChunk
	if remainder > 0 {
		w.log.Info("posting final partial chunk job",
			ports.Uint64("chunk", fullChunks+1),
			ports.Uint64("frames", remainder),
		)
		w.post(fullChunks, w.consumed-remainder, uint32(remainder))
	}
}

func (w *Archiver) post(chunk, start uint64, count uint32) {
	w.jobs <- domain.ChunkJob{ChunkIndex: chunk, StartFrame: start, FrameCount: count}
	w.posted++
}

// Consumed returns the number of frames persisted.
func (w *Archiver) Consumed() uint64 { return w.consumed }

// JobsPosted returns the number of chunk jobs submitted.
func (w *Archiver) JobsPosted() int { return w.posted }

// Err returns the persistence failure that aborted the run, if any.
func (w *Archiver) Err() error { return w.err }
