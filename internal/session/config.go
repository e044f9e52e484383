package session

import (
	"fmt"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/archive"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/encodepool"
)

// Default configuration values.
const (
	DefaultFramerate        = 50
	DefaultStrobeLine       = 1
	DefaultChunkDuration    = 10 * time.Second
	DefaultBufferMultiplier = 2.0
	DefaultJPEGQuality      = 90
	DefaultFrameTimeout     = time.Second
	DefaultRateTolerance    = 1.0
	DefaultMinRateSamples   = 10
	DefaultEncodeWorkers    = 1

	// jobQueueCapacity bounds the job channel. Generously sized: a session
	// producing this many chunks has been recording for hours, and the
	// archiver must never block on submission.
	jobQueueCapacity = 256
)

// Config holds everything a recording session needs to run.
type Config struct {
	// SaveRoot is the directory sessions are created under.
	SaveRoot string

	// Duration stops recording automatically once elapsed; zero records
	// until a stop is signalled.
	Duration time.Duration

	// Framerate is the capture rate in Hz, configured on the device
	// externally and validated post-hoc.
	Framerate int

	// StrobeLine is the hardware sync line the source asserts; recorded in
	// the metadata sidecar.
	StrobeLine int

	// GenerateVideo enables encoding; false persists frames only.
	GenerateVideo bool

	// DeleteFrames removes the session directory after a confirmed
	// successful encode.
	DeleteFrames bool

	// Chunked enables the concurrent encoder pool; false falls back to one
	// sequential encode after capture.
	Chunked bool

	// LivePreview streams the device before recording for visual
	// confirmation; frames are discarded.
	LivePreview bool

	// ChunkDuration is the encode window length.
	ChunkDuration time.Duration

	// BufferMultiplier sizes the ring buffer in chunk windows.
	BufferMultiplier float64

	// JPEGQuality is the persisted frame quality, 1-100.
	JPEGQuality int

	// EncodeWorkers is the encoder pool size.
	EncodeWorkers int

	// LagThreshold defers chunk job posting above this many frames of lag;
	// zero uses the default.
	LagThreshold uint64

	// FrameTimeout bounds each frame wait; exceeding it is a device fault.
	FrameTimeout time.Duration

	// RateTolerance is the allowed deviation between measured and configured
	// frame rate, in Hz.
	RateTolerance float64

	// MinRateSamples is the minimum frame count before the rate check
	// applies.
	MinRateSamples uint64

	// ShutdownTimeout bounds the encoder pool join before force-kill; zero
	// uses the default.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with the standard recording parameters.
// SaveRoot must be set before use.
func DefaultConfig() Config {
	return Config{
		Framerate:        DefaultFramerate,
		StrobeLine:       DefaultStrobeLine,
		GenerateVideo:    true,
		DeleteFrames:     true,
		Chunked:          true,
		LivePreview:      true,
		ChunkDuration:    DefaultChunkDuration,
		BufferMultiplier: DefaultBufferMultiplier,
		JPEGQuality:      DefaultJPEGQuality,
		EncodeWorkers:    DefaultEncodeWorkers,
		LagThreshold:     archive.DefaultLagThreshold,
		FrameTimeout:     DefaultFrameTimeout,
		RateTolerance:    DefaultRateTolerance,
		MinRateSamples:   DefaultMinRateSamples,
		ShutdownTimeout:  encodepool.DefaultShutdownTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SaveRoot == "" {
		return fmt.Errorf("%w: save root is required", domain.ErrInvalidConfig)
	}
	if c.Framerate <= 0 {
		return fmt.Errorf("%w: framerate must be positive", domain.ErrInvalidConfig)
	}
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("%w: chunk duration must be positive", domain.ErrInvalidConfig)
	}
	if c.FramesPerChunk() == 0 {
		return fmt.Errorf("%w: chunk window must hold at least one frame", domain.ErrInvalidConfig)
	}
	if c.BufferMultiplier < 1 {
		return fmt.Errorf("%w: buffer multiplier must be at least 1", domain.ErrInvalidConfig)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality must be within 1-100", domain.ErrInvalidConfig)
	}
	if c.EncodeWorkers < 1 {
		return fmt.Errorf("%w: encode workers must be at least 1", domain.ErrInvalidConfig)
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = DefaultFrameTimeout
	}
	return nil
}

// FramesPerChunk is the encode window size in frames.
func (c Config) FramesPerChunk() uint64 {
	return uint64(float64(c.Framerate) * c.ChunkDuration.Seconds())
}

// BufferCapacity is the ring size: BufferMultiplier chunk windows, so the
// buffer can absorb a full window of persistence jitter.
func (c Config) BufferCapacity() int {
	return int(c.BufferMultiplier * float64(c.FramesPerChunk()))
}
