package domain

// Outcome classifies how a recording session ended. The distinction between
// OutcomeRateFault and OutcomeFramesOnly is deliberate: one is a detected
// fault, the other a user request, and they must never be conflated in
// reporting.
type Outcome int

const (
	// OutcomeVideoReady means the final artifact was assembled successfully.
	OutcomeVideoReady Outcome = iota

	// OutcomeFramesOnly means encoding was disabled by request; the persisted
	// frames are the deliverable.
	OutcomeFramesOnly

	// OutcomeRateFault means the measured frame rate deviated from the
	// configured rate, so encoding was skipped and frames were kept.
	OutcomeRateFault

	// OutcomeEncodeFailed means encoding or concatenation failed; frames are
	// kept on disk.
	OutcomeEncodeFailed

	// OutcomeAborted means the user quit before a reliable artifact existed.
	OutcomeAborted
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeVideoReady:
		return "VideoReady"
	case OutcomeFramesOnly:
		return "FramesOnly"
	case OutcomeRateFault:
		return "RateFault"
	case OutcomeEncodeFailed:
		return "EncodeFailed"
	case OutcomeAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Result summarizes one recording session for the caller.
type Result struct {
	// SessionID uniquely identifies the session in logs and metadata.
	SessionID string

	// SessionDir is the directory holding persisted frames and chunks.
	SessionDir string

	// ArtifactPath is the final video path, empty if none was produced.
	ArtifactPath string

	// FramesCaptured is the number of complete frames pulled from the source.
	FramesCaptured uint64

	// FramesPersisted is the number of frames written to disk.
	FramesPersisted uint64

	// ChunksEncoded is the number of chunk files that encoded successfully.
	ChunksEncoded int

	// ChunksDropped is the number of chunk jobs that failed and are missing
	// from the final artifact.
	ChunksDropped int

	// MeasuredRate is the effective capture rate in Hz over the run.
	MeasuredRate float64

	// CaptureFault is the device error that cut capture short, nil for a
	// clean run. A faulted run may still produce an artifact from the frames
	// captured before the fault, but the frame directory is always kept.
	CaptureFault error

	// VideoSuccess reports whether a final artifact exists. Persisted frames
	// are only ever deleted when this is true.
	VideoSuccess bool

	// FramesDeleted reports whether cleanup removed the session directory.
	FramesDeleted bool

	Outcome Outcome
}
