package ports

import "github.com/cantin-ortiz/camera-capture-tool/internal/domain"

// FrameStore persists captured frames under their sequence index. The naming
// scheme must be fixed-width and zero-padded so that lexical order equals
// numeric order; the encoder relies on that ordering.
type FrameStore interface {
	// Write persists one frame. An error is fatal to the archiver.
	Write(frame domain.Frame) error

	// Dir returns the directory frames are written into.
	Dir() string
}
