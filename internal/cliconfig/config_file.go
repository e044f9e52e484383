package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	SavePath         string  `toml:"save_path"`
	Duration         string  `toml:"duration"`
	Framerate        int     `toml:"framerate"`
	StrobeLine       int     `toml:"strobe_line"`
	Output           string  `toml:"output"`
	KeepFrames       *bool   `toml:"keep_frames"`
	Sequential       *bool   `toml:"sequential"`
	NoLive           *bool   `toml:"nolive"`
	Debug            *bool   `toml:"debug"`
	Workers          int     `toml:"workers"`
	ChunkDuration    string  `toml:"chunk_duration"`
	BufferMultiplier float64 `toml:"buffer_multiplier"`
	JPEGQuality      int     `toml:"jpeg_quality"`
	ShutdownTimeout  string  `toml:"shutdown_timeout"`
	ControlFile      string  `toml:"control_file"`
	FFmpegBinary     string  `toml:"ffmpeg"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.camrec/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camrec", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("save-path", fc.SavePath, &cfg.SavePath)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("control-file", fc.ControlFile, &cfg.ControlFile)
	s.setString("ffmpeg", fc.FFmpegBinary, &cfg.FFmpegBinary)

	if err := s.setDuration("duration", fc.Duration, &cfg.Duration); err != nil {
		return err
	}
	if err := s.setDuration("chunk-duration", fc.ChunkDuration, &cfg.ChunkDuration); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("framerate", fc.Framerate, &cfg.Framerate)
	s.setInt("line", fc.StrobeLine, &cfg.StrobeLine)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("jpeg-quality", fc.JPEGQuality, &cfg.JPEGQuality)

	s.setFloat("buffer-multiplier", fc.BufferMultiplier, &cfg.BufferMultiplier)

	s.setBool("keep-frames", fc.KeepFrames, &cfg.KeepFrames)
	s.setBool("sequential", fc.Sequential, &cfg.Sequential)
	s.setBool("nolive", fc.NoLive, &cfg.NoLive)
	s.setBool("debug", fc.Debug, &cfg.Debug)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
