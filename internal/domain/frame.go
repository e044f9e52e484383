package domain

import "time"

// PixelFormat identifies the memory layout of an image's pixel data.
type PixelFormat uint8

const (
	// PixelFormatMono8 is 8-bit grayscale, one byte per pixel.
	PixelFormatMono8 PixelFormat = iota

	// PixelFormatRGB24 is packed 8-bit RGB, three bytes per pixel.
	PixelFormatRGB24
)

// String returns a human-readable representation of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatMono8:
		return "Mono8"
	case PixelFormatRGB24:
		return "RGB24"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the per-pixel storage size for the format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB24:
		return 3
	default:
		return 1
	}
}

// Image is one captured picture with an explicit fixed layout. Width, height,
// stride and format are carried alongside the pixel bytes so that buffer
// sizing and serialization never have to guess.
type Image struct {
	// Pixels holds Height*Stride bytes in the layout described by Format.
	Pixels []byte

	// Width is the picture width in pixels.
	Width int

	// Height is the picture height in pixels.
	Height int

	// Stride is the number of bytes between vertically adjacent pixels.
	Stride int

	// Format describes the pixel layout.
	Format PixelFormat

	// CapturedAt is the time the frame was retrieved from the device.
	CapturedAt time.Time
}

// Clone returns a deep copy of the image. Frame sources are free to reuse
// their internal buffers once Next returns, so the acquisition loop clones
// every image before handing it to the ring buffer.
func (im Image) Clone() Image {
	out := im
	out.Pixels = make([]byte, len(im.Pixels))
	copy(out.Pixels, im.Pixels)
	return out
}

// Frame is an image plus the monotonic sequence index assigned when it was
// enqueued into the ring buffer. Indexes start at 0 and have no gaps.
type Frame struct {
	Index uint64
	Image
}
