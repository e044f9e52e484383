package domain

// ChunkJob describes one contiguous window of persisted frames to be turned
// into a single chunk file by the encoder pool. Chunk indexes are 0-based and
// contiguous; user-facing logs show them 1-based.
type ChunkJob struct {
	// ChunkIndex is the logical position of the chunk in the recording.
	ChunkIndex uint64

	// StartFrame is the sequence index of the first frame in the window.
	StartFrame uint64

	// FrameCount is the number of frames in the window. Every chunk covers a
	// full window except possibly the last one.
	FrameCount uint32
}

// ChunkResult records a successfully encoded chunk. Failed encode jobs
// produce no result and are never retried.
type ChunkResult struct {
	ChunkIndex uint64
	FilePath   string
}
