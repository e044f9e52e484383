package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CAMREC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("save-path", os.Getenv("CAMREC_SAVE_PATH"), &cfg.SavePath)
	s.setString("output", os.Getenv("CAMREC_OUTPUT"), &cfg.Output)
	s.setString("control-file", os.Getenv("CAMREC_CONTROL_FILE"), &cfg.ControlFile)
	s.setString("ffmpeg", os.Getenv("CAMREC_FFMPEG"), &cfg.FFmpegBinary)

	if err := s.setDuration("duration", os.Getenv("CAMREC_DURATION"), &cfg.Duration); err != nil {
		return err
	}
	if err := s.setDuration("chunk-duration", os.Getenv("CAMREC_CHUNK_DURATION"), &cfg.ChunkDuration); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("CAMREC_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("framerate", os.Getenv("CAMREC_FRAMERATE"), &cfg.Framerate); err != nil {
		return err
	}
	if err := s.setIntFromString("line", os.Getenv("CAMREC_STROBE_LINE"), &cfg.StrobeLine); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("CAMREC_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("jpeg-quality", os.Getenv("CAMREC_JPEG_QUALITY"), &cfg.JPEGQuality); err != nil {
		return err
	}

	if err := s.setFloatFromString("buffer-multiplier", os.Getenv("CAMREC_BUFFER_MULTIPLIER"), &cfg.BufferMultiplier); err != nil {
		return err
	}

	s.setBoolFromString("keep-frames", os.Getenv("CAMREC_KEEP_FRAMES"), &cfg.KeepFrames)
	s.setBoolFromString("sequential", os.Getenv("CAMREC_SEQUENTIAL"), &cfg.Sequential)
	s.setBoolFromString("nolive", os.Getenv("CAMREC_NOLIVE"), &cfg.NoLive)
	s.setBoolFromString("debug", os.Getenv("CAMREC_DEBUG"), &cfg.Debug)

	return nil
}
