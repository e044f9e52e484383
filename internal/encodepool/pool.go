// Package encodepool runs the chunk encode workers.
//
// Workers are goroutines supervising external encoder processes, so the
// CPU-heavy work and any encoder crash stay isolated from the capture path;
// jobs and results cross the boundary as plain values, never shared memory.
// Results are reassembled by chunk index because parallel workers finish out
// of submission order.
package encodepool

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
)

// DefaultShutdownTimeout bounds the wait for in-flight encodes after the
// jobs channel closes. A worker stuck inside an external encode call must
// not block shutdown indefinitely.
const DefaultShutdownTimeout = 30 * time.Second

// Pool consumes chunk jobs, invokes the external encoder, and writes the
// sorted chunk manifest on shutdown.
type Pool struct {
	workers  int
	jobs     <-chan domain.ChunkJob
	enc      ports.Encoder
	manifest ports.ManifestRepository
	frameDir string
	log      ports.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	results []domain.ChunkResult
	dropped int
}

// New creates a pool reading from jobs. The channel is closed by the
// archiver once every job has been posted.
func New(workers int, jobs <-chan domain.ChunkJob, enc ports.Encoder, manifest ports.ManifestRepository, frameDir string, logger ports.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers:  workers,
		jobs:     jobs,
		enc:      enc,
		manifest: manifest,
		frameDir: frameDir,
		log:      logger,
	}
}

// Start launches the workers. The derived context is cancelled by Shutdown's
// force path and by Abort, killing any in-flight encoder process.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.drain(id)
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(ctx, id, job)
		}
	}
}

// run executes one encode job. A failed job is logged and dropped
// permanently; the final artifact is assembled from the chunks that
// succeeded.
func (p *Pool) run(ctx context.Context, id int, job domain.ChunkJob) {
	p.log.Info("encoding chunk",
		ports.Int("worker", id),
		ports.Uint64("chunk", job.ChunkIndex+1),
		ports.Uint64("start_frame", job.StartFrame),
		ports.Uint64("frames", uint64(job.FrameCount)),
	)

	path, err := p.enc.EncodeRange(ctx, p.frameDir, job.ChunkIndex, job.StartFrame, job.FrameCount)
	if err != nil {
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.log.Error("chunk encode failed, job dropped",
			ports.Uint64("chunk", job.ChunkIndex+1),
			ports.Err(err),
		)
		return
	}

	p.mu.Lock()
	p.results = append(p.results, domain.ChunkResult{ChunkIndex: job.ChunkIndex, FilePath: path})
	p.mu.Unlock()
}

// drain discards queued jobs after a forced stop without processing them.
func (p *Pool) drain(id int) {
	discarded := 0
	for {
		select {
		case _, ok := <-p.jobs:
			if !ok {
				if discarded > 0 {
					p.log.Warn("discarded queued jobs on forced stop",
						ports.Int("worker", id),
						ports.Int("jobs", discarded),
					)
				}
				return
			}
			discarded++
		default:
			if discarded > 0 {
				p.log.Warn("discarded queued jobs on forced stop",
					ports.Int("worker", id),
					ports.Int("jobs", discarded),
				)
			}
			return
		}
	}
}

// Shutdown waits for the workers to finish the remaining jobs, escalating to
// a forced stop after timeout, then writes the manifest. Forced termination
// of an in-flight encode is the only forced kill in the system; it returns
// domain.ErrShutdownTimeout after the manifest is written from whatever
// completed.
func (p *Pool) Shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	var timedOut bool
	if !p.waitWithTimeout(timeout) {
		timedOut = true
		p.log.Warn("encoder pool shutdown timeout, terminating workers",
			ports.Duration("timeout", timeout),
		)
		p.cancel()
		p.wg.Wait()
	}
	p.cancel()

	if err := p.writeManifest(); err != nil {
		return err
	}
	if timedOut {
		return domain.ErrShutdownTimeout
	}
	return nil
}

// Abort cancels the workers immediately, discarding queued jobs. Used on
// quit, where no artifact is expected.
func (p *Pool) Abort() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) waitWithTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// writeManifest sorts the accumulated results by chunk index and persists
// them for the session to read after the pool is gone.
func (p *Pool) writeManifest() error {
	results := p.Results()
	if len(results) == 0 {
		return nil
	}
	return p.manifest.Save(results)
}

// Results returns the accumulated chunk results sorted by index, duplicates
// removed.
func (p *Pool) Results() []domain.ChunkResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.ChunkResult, len(p.results))
	copy(out, p.results)
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })

	dedup := out[:0]
	var last *domain.ChunkResult
	for i := range out {
		if last != nil && out[i].ChunkIndex == last.ChunkIndex {
			continue
		}
		dedup = append(dedup, out[i])
		last = &dedup[len(dedup)-1]
	}
	return dedup
}

// Dropped returns the number of jobs that failed and were discarded.
func (p *Pool) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
