// Package fs contains file-system adapters: the JPEG frame store and the
// chunk manifest repository.
package fs

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

// frameFilePattern keeps lexical order equal to numeric order; the encoder's
// sequence input relies on it.
const frameFilePattern = "frame_%07d.jpg"

// FrameStore implements ports.FrameStore by writing one JPEG per frame into
// a session directory.
type FrameStore struct {
	dir     string
	quality int
}

// NewFrameStore creates the directory if needed and returns a store writing
// JPEGs at the given quality (1-100).
func NewFrameStore(dir string, quality int) (*FrameStore, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range", quality)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("frame dir: %w", err)
	}
	return &FrameStore{dir: dir, quality: quality}, nil
}

// Write persists the frame under its zero-padded sequence index.
func (s *FrameStore) Write(frame domain.Frame) error {
	img, err := toImage(frame.Image)
	if err != nil {
		return fmt.Errorf("frame %d: %w", frame.Index, err)
	}

	path := filepath.Join(s.dir, FrameName(frame.Index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: s.quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", frame.Index, err)
	}
	return f.Close()
}

// Dir returns the frame directory.
func (s *FrameStore) Dir() string { return s.dir }

// FrameName returns the file name for a sequence index.
func FrameName(index uint64) string {
	return fmt.Sprintf(frameFilePattern, index)
}

// FramePattern returns the printf-style sequence pattern rooted in dir, as
// consumed by the encoder's image-sequence input.
func FramePattern(dir string) string {
	return filepath.Join(dir, frameFilePattern)
}

func toImage(im domain.Image) (image.Image, error) {
	rect := image.Rect(0, 0, im.Width, im.Height)
	switch im.Format {
	case domain.PixelFormatMono8:
		if len(im.Pixels) < im.Stride*im.Height {
			return nil, fmt.Errorf("short pixel buffer: %d bytes for %dx%d stride %d",
				len(im.Pixels), im.Width, im.Height, im.Stride)
		}
		return &image.Gray{Pix: im.Pixels, Stride: im.Stride, Rect: rect}, nil
	case domain.PixelFormatRGB24:
		if len(im.Pixels) < im.Stride*im.Height {
			return nil, fmt.Errorf("short pixel buffer: %d bytes for %dx%d stride %d",
				len(im.Pixels), im.Width, im.Height, im.Stride)
		}
		out := image.NewRGBA(rect)
		for y := 0; y < im.Height; y++ {
			row := im.Pixels[y*im.Stride:]
			for x := 0; x < im.Width; x++ {
				out.SetRGBA(x, y, color.RGBA{R: row[x*3], G: row[x*3+1], B: row[x*3+2], A: 0xff})
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", im.Format)
	}
}
