package archive

import (
	"errors"
	"sync"
	"testing"

	logadapter "github.com/cantin-ortiz/camera-capture-tool/internal/adapters/log"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ring"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

// memStore collects written frames; failAt triggers a write error on the
// given sequence index.
type memStore struct {
	mu      sync.Mutex
	written []uint64
	failAt  int64
}

func newMemStore() *memStore {
	return &memStore{failAt: -1}
}

func (s *memStore) Write(frame domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt >= 0 && frame.Index == uint64(s.failAt) {
		return errors.New("disk full")
	}
	s.written = append(s.written, frame.Index)
	return nil
}

func (s *memStore) Dir() string { return "/tmp/frames" }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func fillBuffer(buf *ring.Buffer, n int) {
	img := domain.Image{Pixels: []byte{0}, Width: 1, Height: 1, Stride: 1}
	for i := 0; i < n; i++ {
		buf.Put(img)
	}
}

func collectJobs(jobs <-chan domain.ChunkJob) []domain.ChunkJob {
	var out []domain.ChunkJob
	for j := range jobs {
		out = append(out, j)
	}
	return out
}

func runArchiver(t *testing.T, cfg Config, frames int, store *memStore) ([]domain.ChunkJob, *Archiver, error) {
	t.Helper()

	buf := ring.New(frames + 1)
	fillBuffer(buf, frames)
	buf.Stop()

	jobs := make(chan domain.ChunkJob, 64)
	w := New(cfg, buf, store, jobs, signals.New(), logadapter.NewNoopLogger())

	var (
		runErr error
		wg     sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = w.Run()
	}()

	got := collectJobs(jobs)
	wg.Wait()
	return got, w, runErr
}

// Framerate 50, chunk duration 10s: window = 500 frames. 1200 frames then
// stop must yield jobs covering [0,500), [500,1000), [1000,1200).
func TestArchiver_ChunkWindows(t *testing.T) {
	store := newMemStore()
	jobs, w, err := runArchiver(t, Config{FramesPerChunk: 500, PostJobs: true}, 1200, store)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := []domain.ChunkJob{
		{ChunkIndex: 0, StartFrame: 0, FrameCount: 500},
		{ChunkIndex: 1, StartFrame: 500, FrameCount: 500},
		{ChunkIndex: 2, StartFrame: 1000, FrameCount: 200},
	}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d: %+v", len(jobs), len(want), jobs)
	}
	for i, j := range jobs {
		if j != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, j, want[i])
		}
	}
	if w.Consumed() != 1200 {
		t.Errorf("Consumed = %d, want 1200", w.Consumed())
	}
	if store.count() != 1200 {
		t.Errorf("persisted = %d, want 1200", store.count())
	}
}

// Exact multiple of the window: no partial job is posted.
func TestArchiver_NoPartialJobOnExactMultiple(t *testing.T) {
	jobs, _, err := runArchiver(t, Config{FramesPerChunk: 100, PostJobs: true}, 300, newMemStore())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(jobs))
	}
	for _, j := range jobs {
		if j.FrameCount != 100 {
			t.Errorf("chunk %d frame count = %d, want 100", j.ChunkIndex, j.FrameCount)
		}
	}
}

// Fewer frames than one window: a single partial job covers everything.
func TestArchiver_OnlyPartialChunk(t *testing.T) {
	jobs, _, err := runArchiver(t, Config{FramesPerChunk: 500, PostJobs: true}, 42, newMemStore())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	want := domain.ChunkJob{ChunkIndex: 0, StartFrame: 0, FrameCount: 42}
	if jobs[0] != want {
		t.Errorf("job = %+v, want %+v", jobs[0], want)
	}
}

// High lag at a chunk boundary defers posting; the deferred jobs still go
// out, in index order, after the producer stops and the buffer drains.
func TestArchiver_LagDefersJobUntilFlush(t *testing.T) {
	const window = 10
	const frames = 95 // lag at the first boundaries far exceeds the threshold

	buf := ring.New(frames + 1)
	fillBuffer(buf, frames)
	buf.Stop()

	jobs := make(chan domain.ChunkJob, 64)
	w := New(Config{FramesPerChunk: window, LagThreshold: 50, PostJobs: true},
		buf, newMemStore(), jobs, signals.New(), logadapter.NewNoopLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	var got []domain.ChunkJob
	go func() {
		defer wg.Done()
		got = collectJobs(jobs)
	}()
	if err := w.Run(); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	wg.Wait()

	// 9 full windows plus a 5-frame remainder.
	if len(got) != 10 {
		t.Fatalf("got %d jobs, want 10: %+v", len(got), got)
	}
	for i, j := range got {
		if j.ChunkIndex != uint64(i) {
			t.Fatalf("job %d has chunk index %d, want %d (index order violated)", i, j.ChunkIndex, i)
		}
	}
	if last := got[9]; last.FrameCount != 5 || last.StartFrame != 90 {
		t.Errorf("final job = %+v, want 5 frames from 90", last)
	}
}

// Simulated lag of 80 frames at the first boundary (threshold 50): that
// chunk's job is deferred at the boundary but still posted before any later
// chunk's job.
func TestArchiver_DeferredChunkNotSkippedByLaterPost(t *testing.T) {
	const window = 10
	const frames = 90 // at consumed=10, lag=80: defer; by consumed=50, lag=40: post

	buf := ring.New(frames + 1)
	fillBuffer(buf, frames)
	buf.Stop()

	jobs := make(chan domain.ChunkJob, 64)
	w := New(Config{FramesPerChunk: window, LagThreshold: 50, PostJobs: true},
		buf, newMemStore(), jobs, signals.New(), logadapter.NewNoopLogger())

	done := make(chan []domain.ChunkJob)
	go func() { done <- collectJobs(jobs) }()
	if err := w.Run(); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	got := <-done

	seen := map[uint64]int{}
	for _, j := range got {
		seen[j.ChunkIndex]++
	}
	for c := uint64(0); c < 9; c++ {
		if seen[c] != 1 {
			t.Errorf("chunk %d posted %d times, want exactly once", c, seen[c])
		}
	}
}

// PostJobs disabled: frames are persisted, the jobs channel closes with
// nothing on it.
func TestArchiver_NoJobsWhenPostingDisabled(t *testing.T) {
	store := newMemStore()
	jobs, w, err := runArchiver(t, Config{FramesPerChunk: 10}, 35, store)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("got %d jobs with posting disabled", len(jobs))
	}
	if w.Consumed() != 35 {
		t.Errorf("Consumed = %d, want 35", w.Consumed())
	}
	if store.count() != 35 {
		t.Errorf("persisted = %d, want 35", store.count())
	}
}

// A write failure aborts the run: stop requested, error surfaced, remaining
// frames drained without being persisted, no job flush.
func TestArchiver_PersistenceFailureIsFatal(t *testing.T) {
	store := newMemStore()
	store.failAt = 3

	buf := ring.New(16)
	fillBuffer(buf, 10)
	buf.Stop()

	jobs := make(chan domain.ChunkJob, 16)
	sig := signals.New()
	w := New(Config{FramesPerChunk: 5, PostJobs: true}, buf, store, jobs, sig, logadapter.NewNoopLogger())

	err := w.Run()
	if err == nil {
		t.Fatal("Run returned nil after a write failure")
	}
	if !sig.StopRequested() {
		t.Error("write failure did not request a stop")
	}
	if store.count() != 3 {
		t.Errorf("persisted = %d, want 3 (frames before the failure)", store.count())
	}
	if got := collectJobs(jobs); len(got) != 0 {
		t.Errorf("jobs posted after fatal failure: %+v", got)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer not drained after failure, %d frames left", buf.Len())
	}
}
