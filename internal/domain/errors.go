package domain

import "errors"

// Domain errors returned across the capture pipeline. Callers check them
// with errors.Is.
var (
	// ErrIncompleteFrame is returned by a frame source when the device
	// delivered a partial transfer. The frame is skipped without counting.
	ErrIncompleteFrame = errors.New("camrec: incomplete frame")

	// ErrFrameTimeout is returned by a frame source when no frame arrived
	// within the wait bound. Fatal to the acquisition loop.
	ErrFrameTimeout = errors.New("camrec: frame wait timed out")

	// ErrRateDeviation is raised post-capture when the measured frame rate
	// differs from the configured rate beyond tolerance.
	ErrRateDeviation = errors.New("camrec: frame rate deviation")

	// ErrNothingToConcat is returned when concatenation is asked to assemble
	// an empty chunk list.
	ErrNothingToConcat = errors.New("camrec: no chunks to concatenate")

	// ErrSessionActive is returned when another recorder holds the save
	// directory lock.
	ErrSessionActive = errors.New("camrec: save directory locked by another session")

	// ErrShutdownTimeout is returned when the encoder pool did not finish
	// within its shutdown bound and was force-terminated.
	ErrShutdownTimeout = errors.New("camrec: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("camrec: invalid configuration")
)
