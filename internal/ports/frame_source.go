package ports

import (
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

// FrameSource is the capture device collaborator.
//
// Begin configures the device for continuous acquisition and asserts the
// hardware strobe line tied to exposure. End stops acquisition and returns
// the line to a constant idle state; the acquisition loop calls it
// unconditionally on every exit path.
type FrameSource interface {
	// Begin arms the device for continuous capture.
	Begin() error

	// Next blocks up to timeout for the next frame.
	// Returns domain.ErrIncompleteFrame for a partial transfer (skip and
	// continue) and domain.ErrFrameTimeout when nothing arrived in time
	// (fatal). The returned image may alias device-internal storage; callers
	// must copy before retaining it.
	Next(timeout time.Duration) (domain.Image, error)

	// End stops acquisition and deasserts the strobe.
	End() error
}
