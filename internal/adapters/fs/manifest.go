package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

const manifestFileName = "final_chunk_paths.txt"

// ManifestFile implements ports.ManifestRepository with one concat-list
// entry per line (`file '<path>'`), the syntax the encoder's concatenation
// input expects, so the file is usable as-is.
type ManifestFile struct {
	dir string
}

// NewManifestFile creates a manifest repository rooted in dir.
func NewManifestFile(dir string) *ManifestFile {
	return &ManifestFile{dir: dir}
}

// Save writes the result paths atomically (temp file then rename). Results
// are expected pre-sorted by chunk index; an empty set writes nothing.
func (m *ManifestFile) Save(results []domain.ChunkResult) error {
	if len(results) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "file '%s'\n", r.FilePath)
	}

	path := m.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the chunk paths in manifest order. A missing manifest is an
// empty list, not an error.
func (m *ManifestFile) Load() ([]string, error) {
	f, err := os.Open(m.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, parseConcatLine(line))
	}
	return paths, scanner.Err()
}

// Discard removes the manifest once the session has consumed it.
func (m *ManifestFile) Discard() error {
	err := os.Remove(m.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path returns the manifest file location.
func (m *ManifestFile) Path() string {
	return filepath.Join(m.dir, manifestFileName)
}

// parseConcatLine strips the concat-list framing; bare paths pass through.
func parseConcatLine(line string) string {
	if rest, ok := strings.CutPrefix(line, "file '"); ok {
		return strings.TrimSuffix(rest, "'")
	}
	return line
}
