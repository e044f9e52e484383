package ports

import "context"

// Encoder invokes the external video encoder. Implementations run the
// encoder as a separate OS process; cancelling the context kills an
// in-flight invocation.
type Encoder interface {
	// EncodeRange encodes frameCount persisted frames starting at startFrame
	// from frameDir into one chunk file and returns its path.
	EncodeRange(ctx context.Context, frameDir string, chunkIndex, startFrame uint64, frameCount uint32) (string, error)

	// EncodeSequential encodes the full persisted frame range in one pass.
	// This is the correctness fallback to chunked encoding and produces an
	// equivalent artifact.
	EncodeSequential(ctx context.Context, frameDir, outputPath string) error

	// Concatenate stream-copies the ordered chunk files into outputPath
	// without re-encoding. An empty list is domain.ErrNothingToConcat.
	Concatenate(ctx context.Context, chunkPaths []string, outputPath string) error
}
