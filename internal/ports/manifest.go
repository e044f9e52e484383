package ports

import "github.com/cantin-ortiz/camera-capture-tool/internal/domain"

// ManifestRepository persists the ordered chunk path list written by the
// encoder pool on exit and read once by the session before concatenation.
type ManifestRepository interface {
	// Save writes the results, sorted by chunk index, in the encoder's
	// concat-list syntax. Saving an empty result set writes nothing.
	Save(results []domain.ChunkResult) error

	// Load returns the chunk paths in manifest order. A missing manifest
	// yields an empty list and no error.
	Load() ([]string, error)

	// Discard removes the manifest after it has been consumed.
	Discard() error

	// Path returns the manifest file location.
	Path() string
}
