package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				SavePath:   "/data/recordings",
				Duration:   "2m",
				Framerate:  100,
				Output:     "both",
				KeepFrames: &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				SavePath:   "/data/recordings",
				Duration:   2 * time.Minute,
				Framerate:  100,
				Output:     "both",
				KeepFrames: true,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				SavePath:  "/config/save",
				Framerate: 100,
			},
			changed: map[string]bool{"save-path": true},
			initial: Config{
				SavePath:  "/flag/save",
				Framerate: 50,
			},
			expected: Config{
				SavePath:  "/flag/save", // unchanged because flag was set
				Framerate: 100,
			},
			wantErr: false,
		},
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				SavePath:         "/data",
				Duration:         "90s",
				Framerate:        120,
				StrobeLine:       2,
				Output:           "video",
				KeepFrames:       &falseVal,
				Sequential:       &trueVal,
				NoLive:           &trueVal,
				Debug:            &trueVal,
				Workers:          4,
				ChunkDuration:    "5s",
				BufferMultiplier: 3.0,
				JPEGQuality:      75,
				ShutdownTimeout:  "1m",
				ControlFile:      "/run/camrec.ctl",
				FFmpegBinary:     "/opt/ffmpeg/bin/ffmpeg",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				SavePath:         "/data",
				Duration:         90 * time.Second,
				Framerate:        120,
				StrobeLine:       2,
				Output:           "video",
				KeepFrames:       false,
				Sequential:       true,
				NoLive:           true,
				Debug:            true,
				Workers:          4,
				ChunkDuration:    5 * time.Second,
				BufferMultiplier: 3.0,
				JPEGQuality:      75,
				ShutdownTimeout:  time.Minute,
				ControlFile:      "/run/camrec.ctl",
				FFmpegBinary:     "/opt/ffmpeg/bin/ffmpeg",
			},
			wantErr: false,
		},
		{
			name: "invalid duration string",
			fileConfig: FileConfig{
				Duration: "not-a-duration",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
save_path = "/data/recordings"
duration = "30s"
framerate = 100
output = "both"
workers = 2
sequential = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.SavePath != "/data/recordings" {
		t.Errorf("SavePath = %v, want /data/recordings", fc.SavePath)
	}
	if fc.Duration != "30s" {
		t.Errorf("Duration = %v, want 30s", fc.Duration)
	}
	if fc.Framerate != 100 {
		t.Errorf("Framerate = %v, want 100", fc.Framerate)
	}
	if fc.Output != "both" {
		t.Errorf("Output = %v, want both", fc.Output)
	}
	if fc.Workers != 2 {
		t.Errorf("Workers = %v, want 2", fc.Workers)
	}
	if fc.Sequential == nil || *fc.Sequential != true {
		t.Errorf("Sequential = %v, want true", fc.Sequential)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
save_path = "/data"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	// Should return a path containing .camrec
	if path != "" && !strings.Contains(path, ".camrec") {
		t.Errorf("DefaultConfigPath() = %v, should contain .camrec", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
