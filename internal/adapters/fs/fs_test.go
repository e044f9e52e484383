package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

func grayFrame(index uint64, w, h int) domain.Frame {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = byte(i)
	}
	return domain.Frame{
		Index: index,
		Image: domain.Image{Pixels: pix, Width: w, Height: h, Stride: w, Format: domain.PixelFormatMono8},
	}
}

func TestFrameStore_WriteNamesFilesByPaddedIndex(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFrameStore(filepath.Join(dir, "frames"), 90)
	if err != nil {
		t.Fatalf("NewFrameStore: %v", err)
	}

	for _, idx := range []uint64{0, 7, 123, 4500} {
		if err := store.Write(grayFrame(idx, 8, 8)); err != nil {
			t.Fatalf("Write frame %d: %v", idx, err)
		}
	}

	for _, want := range []string{"frame_0000000.jpg", "frame_0000007.jpg", "frame_0000123.jpg", "frame_0004500.jpg"} {
		if _, err := os.Stat(filepath.Join(store.Dir(), want)); err != nil {
			t.Errorf("expected %s: %v", want, err)
		}
	}
}

// Zero-padded names must sort lexically in numeric order.
func TestFrameName_LexicalOrderEqualsNumericOrder(t *testing.T) {
	indexes := []uint64{0, 9, 10, 99, 100, 999999, 1000000}
	var names []string
	for _, i := range indexes {
		names = append(names, FrameName(i))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("frame names not lexically sorted: %v", names)
	}
}

func TestFrameStore_RejectsBadQuality(t *testing.T) {
	if _, err := NewFrameStore(t.TempDir(), 0); err == nil {
		t.Error("quality 0 accepted")
	}
	if _, err := NewFrameStore(t.TempDir(), 101); err == nil {
		t.Error("quality 101 accepted")
	}
}

func TestFrameStore_RejectsShortPixelBuffer(t *testing.T) {
	store, err := NewFrameStore(t.TempDir(), 80)
	if err != nil {
		t.Fatalf("NewFrameStore: %v", err)
	}
	frame := domain.Frame{Image: domain.Image{
		Pixels: make([]byte, 10), Width: 8, Height: 8, Stride: 8,
		Format: domain.PixelFormatMono8,
	}}
	if err := store.Write(frame); err == nil {
		t.Error("short pixel buffer accepted")
	}
}

func TestManifestFile_SaveLoadRoundTrip(t *testing.T) {
	m := NewManifestFile(t.TempDir())

	results := []domain.ChunkResult{
		{ChunkIndex: 0, FilePath: "/out/chunk_0000.mp4"},
		{ChunkIndex: 1, FilePath: "/out/chunk_0001.mp4"},
		{ChunkIndex: 3, FilePath: "/out/chunk_0003.mp4"},
	}
	if err := m.Save(results); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	want := "file '/out/chunk_0000.mp4'\nfile '/out/chunk_0001.mp4'\nfile '/out/chunk_0003.mp4'\n"
	if string(data) != want {
		t.Errorf("manifest content:\n%s\nwant:\n%s", data, want)
	}

	paths, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(paths) != 3 || paths[2] != "/out/chunk_0003.mp4" {
		t.Errorf("Load = %v", paths)
	}
}

func TestManifestFile_EmptySaveWritesNothing(t *testing.T) {
	m := NewManifestFile(t.TempDir())
	if err := m.Save(nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(m.Path()); !os.IsNotExist(err) {
		t.Error("empty save created a manifest file")
	}
}

func TestManifestFile_MissingManifestLoadsEmpty(t *testing.T) {
	m := NewManifestFile(t.TempDir())
	paths, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Load = %v, want empty", paths)
	}
}

func TestManifestFile_DiscardIsIdempotent(t *testing.T) {
	m := NewManifestFile(t.TempDir())
	if err := m.Save([]domain.ChunkResult{{ChunkIndex: 0, FilePath: "a.mp4"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if err := m.Discard(); err != nil {
		t.Errorf("second Discard: %v", err)
	}
}
