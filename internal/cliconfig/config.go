package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cantin-ortiz/camera-capture-tool/internal/session"
)

// Output selects what the session leaves behind.
const (
	// OutputVideo produces the final movie and removes the frame directory
	// after a confirmed success.
	OutputVideo = "video"

	// OutputImages skips encoding entirely; the frame directory is the
	// product.
	OutputImages = "images"

	// OutputBoth produces the movie and keeps the frames.
	OutputBoth = "both"
)

// Config holds CLI configuration for camrec.
type Config struct {
	SavePath   string
	Duration   time.Duration
	Framerate  int
	StrobeLine int

	Output     string
	KeepFrames bool
	Sequential bool
	NoLive     bool
	Debug      bool

	Workers          int
	ChunkDuration    time.Duration
	BufferMultiplier float64
	JPEGQuality      int
	ShutdownTimeout  time.Duration

	ControlFile  string
	FFmpegBinary string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Framerate:        session.DefaultFramerate,
		StrobeLine:       session.DefaultStrobeLine,
		Output:           OutputVideo,
		Workers:          session.DefaultEncodeWorkers,
		ChunkDuration:    session.DefaultChunkDuration,
		BufferMultiplier: session.DefaultBufferMultiplier,
		JPEGQuality:      session.DefaultJPEGQuality,
		FFmpegBinary:     "ffmpeg",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SavePath == "" {
		return fmt.Errorf("save-path is required")
	}
	switch c.Output {
	case OutputVideo, OutputImages, OutputBoth:
	default:
		return fmt.Errorf("output must be %q, %q or %q", OutputVideo, OutputImages, OutputBoth)
	}
	if c.Framerate <= 0 {
		return fmt.Errorf("framerate must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// Session translates the CLI configuration into session parameters. The
// output mode folds into the generate/delete pair: "images" disables
// encoding, "both" keeps the frames next to the movie, and --keep-frames
// overrides deletion in any mode.
func (c Config) Session() session.Config {
	sc := session.DefaultConfig()
	sc.SaveRoot = c.SavePath
	sc.Duration = c.Duration
	sc.Framerate = c.Framerate
	sc.StrobeLine = c.StrobeLine
	sc.GenerateVideo = c.Output != OutputImages
	sc.DeleteFrames = c.Output == OutputVideo && !c.KeepFrames
	sc.Chunked = !c.Sequential
	sc.LivePreview = !c.NoLive
	sc.ChunkDuration = c.ChunkDuration
	sc.BufferMultiplier = c.BufferMultiplier
	sc.JPEGQuality = c.JPEGQuality
	sc.EncodeWorkers = c.Workers
	if c.ShutdownTimeout > 0 {
		sc.ShutdownTimeout = c.ShutdownTimeout
	}
	return sc
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
