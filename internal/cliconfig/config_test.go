package cliconfig

import (
	"testing"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Framerate != 50 {
		t.Errorf("Framerate = %v, want 50", cfg.Framerate)
	}
	if cfg.Output != OutputVideo {
		t.Errorf("Output = %v, want %v", cfg.Output, OutputVideo)
	}
	if cfg.ChunkDuration != 10*time.Second {
		t.Errorf("ChunkDuration = %v, want 10s", cfg.ChunkDuration)
	}
	if cfg.FFmpegBinary != "ffmpeg" {
		t.Errorf("FFmpegBinary = %v, want ffmpeg", cfg.FFmpegBinary)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.SavePath = "/tmp/recordings"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing save path",
			mutate:  func(c *Config) { c.SavePath = "" },
			wantErr: true,
		},
		{
			name:    "unknown output mode",
			mutate:  func(c *Config) { c.Output = "frames" },
			wantErr: true,
		},
		{
			name:    "images output",
			mutate:  func(c *Config) { c.Output = OutputImages },
			wantErr: false,
		},
		{
			name:    "zero framerate",
			mutate:  func(c *Config) { c.Framerate = 0 },
			wantErr: true,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Session(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantVideo  bool
		wantDelete bool
	}{
		{
			name:       "video output deletes frames",
			mutate:     func(c *Config) { c.Output = OutputVideo },
			wantVideo:  true,
			wantDelete: true,
		},
		{
			name:       "video output with keep-frames",
			mutate:     func(c *Config) { c.Output = OutputVideo; c.KeepFrames = true },
			wantVideo:  true,
			wantDelete: false,
		},
		{
			name:       "images output never encodes",
			mutate:     func(c *Config) { c.Output = OutputImages },
			wantVideo:  false,
			wantDelete: false,
		},
		{
			name:       "both keeps frames and movie",
			mutate:     func(c *Config) { c.Output = OutputBoth },
			wantVideo:  true,
			wantDelete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SavePath = "/data"
			tt.mutate(&cfg)

			sc := cfg.Session()
			if sc.GenerateVideo != tt.wantVideo {
				t.Errorf("GenerateVideo = %v, want %v", sc.GenerateVideo, tt.wantVideo)
			}
			if sc.DeleteFrames != tt.wantDelete {
				t.Errorf("DeleteFrames = %v, want %v", sc.DeleteFrames, tt.wantDelete)
			}
		})
	}
}

func TestConfig_SessionMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SavePath = "/data"
	cfg.Duration = 90 * time.Second
	cfg.Framerate = 120
	cfg.Sequential = true
	cfg.NoLive = true
	cfg.Workers = 3
	cfg.ShutdownTimeout = time.Minute

	sc := cfg.Session()
	if sc.SaveRoot != "/data" {
		t.Errorf("SaveRoot = %v, want /data", sc.SaveRoot)
	}
	if sc.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", sc.Duration)
	}
	if sc.Framerate != 120 {
		t.Errorf("Framerate = %v, want 120", sc.Framerate)
	}
	if sc.Chunked {
		t.Error("Chunked = true, want false for --sequential")
	}
	if sc.LivePreview {
		t.Error("LivePreview = true, want false for --nolive")
	}
	if sc.EncodeWorkers != 3 {
		t.Errorf("EncodeWorkers = %v, want 3", sc.EncodeWorkers)
	}
	if sc.ShutdownTimeout != time.Minute {
		t.Errorf("ShutdownTimeout = %v, want 1m", sc.ShutdownTimeout)
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("mapped session config invalid: %v", err)
	}
}

func TestConfig_SessionZeroShutdownTimeoutUsesDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SavePath = "/data"

	sc := cfg.Session()
	if sc.ShutdownTimeout != session.DefaultConfig().ShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want session default", sc.ShutdownTimeout)
	}
}
