// Package ffmpeg implements ports.Encoder by invoking the ffmpeg binary.
//
// Each invocation is a separate OS process, which is what isolates the
// CPU-heavy encode from the capture path; cancelling the passed context
// kills the process.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/fs"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
)

const (
	// chunkFilePattern is 0-based on disk; logs show chunks 1-based.
	chunkFilePattern = "chunk_%04d.mp4"

	defaultBinary = "ffmpeg"
	defaultCRF    = 23
)

// Encoder shells out to ffmpeg for chunk encodes, the sequential full-range
// encode, and stream-copy concatenation.
type Encoder struct {
	binary    string
	framerate int
	crf       int
	log       ports.Logger
}

// New creates an encoder using binary (empty means "ffmpeg" from PATH) at
// the given capture framerate.
func New(binary string, framerate int, logger ports.Logger) *Encoder {
	if binary == "" {
		binary = defaultBinary
	}
	return &Encoder{
		binary:    binary,
		framerate: framerate,
		crf:       defaultCRF,
		log:       logger,
	}
}

// EncodeRange encodes one chunk window from the persisted frame sequence.
func (e *Encoder) EncodeRange(ctx context.Context, frameDir string, chunkIndex, startFrame uint64, frameCount uint32) (string, error) {
	out := filepath.Join(frameDir, ChunkName(chunkIndex))
	args := e.rangeArgs(frameDir, startFrame, frameCount, out)

	if err := e.runCommand(ctx, args); err != nil {
		return "", fmt.Errorf("encode chunk %d: %w", chunkIndex+1, err)
	}
	return out, nil
}

// EncodeSequential encodes the whole frame sequence into outputPath in a
// single pass.
func (e *Encoder) EncodeSequential(ctx context.Context, frameDir, outputPath string) error {
	args := e.rangeArgs(frameDir, 0, 0, outputPath)
	if err := e.runCommand(ctx, args); err != nil {
		return fmt.Errorf("sequential encode: %w", err)
	}
	return nil
}

// Concatenate joins the chunk files with a stream copy, no re-encode. The
// list must already be ordered by chunk index.
func (e *Encoder) Concatenate(ctx context.Context, chunkPaths []string, outputPath string) error {
	if len(chunkPaths) == 0 {
		return domain.ErrNothingToConcat
	}

	list, err := writeConcatList(filepath.Dir(outputPath), chunkPaths)
	if err != nil {
		return fmt.Errorf("concat list: %w", err)
	}
	defer os.Remove(list)

	args := concatArgs(list, outputPath)
	if err := e.runCommand(ctx, args); err != nil {
		return fmt.Errorf("concatenate %d chunks: %w", len(chunkPaths), err)
	}
	return nil
}

// rangeArgs builds the image-sequence encode arguments. frameCount 0 means
// the full sequence from frame 0.
func (e *Encoder) rangeArgs(frameDir string, startFrame uint64, frameCount uint32, out string) []string {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(e.framerate),
	}
	if frameCount > 0 {
		args = append(args, "-start_number", strconv.FormatUint(startFrame, 10))
	}
	args = append(args, "-i", fs.FramePattern(frameDir))
	if frameCount > 0 {
		args = append(args, "-frames:v", strconv.FormatUint(uint64(frameCount), 10))
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(e.crf),
		out,
	)
	return args
}

func concatArgs(listPath, out string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		out,
	}
}

func (e *Encoder) runCommand(ctx context.Context, args []string) error {
	e.log.Debug("running encoder", ports.String("cmd", e.binary+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (%s)", e.binary, err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last few lines of encoder output; that is where
// ffmpeg puts the actual failure reason.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	const keep = 3
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.Join(lines, " | ")
}

func writeConcatList(dir string, paths []string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintf(f, "file '%s'\n", p); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// ChunkName returns the on-disk name for a chunk index.
func ChunkName(index uint64) string {
	return fmt.Sprintf(chunkFilePattern, index)
}
