package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/ffmpeg"
	logAdapter "github.com/cantin-ortiz/camera-capture-tool/internal/adapters/log"
	"github.com/cantin-ortiz/camera-capture-tool/internal/adapters/simsource"
	"github.com/cantin-ortiz/camera-capture-tool/internal/cliconfig"
	"github.com/cantin-ortiz/camera-capture-tool/internal/controlwatch"
	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
	"github.com/cantin-ortiz/camera-capture-tool/internal/session"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

const (
	frameWidth  = 640
	frameHeight = 480
)

const helpDescription = `
Record a strobe-synchronized camera at a fixed frame rate, persist every
frame to disk, and assemble the final movie with ffmpeg.

Highlights:
  - Bounded in-memory buffering; frames are never dropped silently.
  - Chunked encoding overlaps with capture, with adaptive back-off under load.
  - Post-hoc frame rate validation guards against silently mis-clocked runs.
  - Configure via file, environment (CAMREC_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  camrec --save-path ~/recordings --duration 60s
  camrec --save-path /data --output both --framerate 100 --workers 2
  camrec --config $HOME/.camrec/config.toml --nolive
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "camrec",
		Short:   "Fixed-cadence camera recorder with chunked ffmpeg encoding",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.camrec/config.toml),
			// then environment, then flag overrides via the changed map.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.camrec/config.toml)")
	root.Flags().StringVar(&cfg.SavePath, "save-path", cfg.SavePath, "directory recordings are saved under")
	root.Flags().DurationVar(&cfg.Duration, "duration", cfg.Duration, "automatic stop after this long (0 = manual stop)")
	root.Flags().IntVar(&cfg.Framerate, "framerate", cfg.Framerate, "capture rate in Hz")
	root.Flags().IntVar(&cfg.StrobeLine, "line", cfg.StrobeLine, "strobe output line on the camera")

	root.Flags().StringVar(&cfg.Output, "output", cfg.Output, "what to keep: video, images or both")
	root.Flags().BoolVar(&cfg.KeepFrames, "keep-frames", cfg.KeepFrames, "keep the frame directory even after a successful encode")
	root.Flags().BoolVar(&cfg.Sequential, "sequential", cfg.Sequential, "encode once after capture instead of chunked-concurrent")
	root.Flags().BoolVar(&cfg.NoLive, "nolive", cfg.NoLive, "skip the live preview before recording")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	root.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent encoder processes")
	root.Flags().DurationVar(&cfg.ChunkDuration, "chunk-duration", cfg.ChunkDuration, "encode window length")
	root.Flags().IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "persisted frame quality (1-100)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "encoder drain deadline before force-kill")

	root.Flags().StringVar(&cfg.ControlFile, "control-file", cfg.ControlFile, "file watched for start/stop/quit commands")
	root.Flags().StringVar(&cfg.FFmpegBinary, "ffmpeg", cfg.FFmpegBinary, "ffmpeg binary to invoke")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "camrec:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config) error {
	logger := logAdapter.NewZerologAdapter(cfg.Debug)
	sig := signals.New()

	source := simsource.New(frameWidth, frameHeight, cfg.Framerate)
	enc := ffmpeg.New(cfg.FFmpegBinary, cfg.Framerate, logger)

	sess, err := session.New(cfg.Session(), source, enc, sig, logger)
	if err != nil {
		return err
	}
	sess.SetPhaseEmitter(consolePrompts{})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go handleSignals(sig)
	go readConsole(sig)
	if cfg.ControlFile != "" {
		go controlwatch.New(cfg.ControlFile, sig, logger).Run(ctx)
	}

	res, err := sess.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(res)
	switch res.Outcome {
	case domain.OutcomeRateFault, domain.OutcomeEncodeFailed:
		return fmt.Errorf("recording finished with outcome %q", res.Outcome)
	}
	return nil
}

// handleSignals maps SIGINT/SIGTERM onto the recorder's own controls: the
// first signal ends recording gracefully (or quits if none has started), a
// second forces quit.
func handleSignals(sig *signals.Set) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	if !sig.StartRequested() {
		sig.RequestQuit()
		return
	}
	sig.RequestStop()

	<-sigCh
	sig.RequestQuit()
}

// readConsole drives the session from stdin: ENTER starts and then stops
// recording, q quits and keeps whatever is on disk.
func readConsole(sig *signals.Set) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "q", "quit":
			sig.RequestQuit()
			return
		default:
			if !sig.StartRequested() {
				sig.RequestStart()
			} else {
				sig.RequestStop()
				return
			}
		}
	}
}

// consolePrompts tells the operator what input the session is waiting for.
type consolePrompts struct{}

func (consolePrompts) OnPhaseChange(_, current session.Phase, _ string) {
	switch current {
	case session.PhaseAwaitStart:
		fmt.Println("Press ENTER to start recording (q quits).")
	case session.PhaseRecording:
		fmt.Println("Recording. Press ENTER to stop, q to quit.")
	case session.PhaseEncoding:
		fmt.Println("Finalizing...")
	}
}

func printSummary(res domain.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Session", res.SessionID})
	t.AppendRows([]table.Row{
		{"Outcome", res.Outcome.String()},
		{"Frames captured", res.FramesCaptured},
		{"Frames persisted", res.FramesPersisted},
		{"Measured rate", fmt.Sprintf("%.2f Hz", res.MeasuredRate)},
		{"Chunks encoded", res.ChunksEncoded},
	})
	if res.ChunksDropped > 0 {
		t.AppendRow(table.Row{"Chunks dropped", res.ChunksDropped})
	}
	if res.CaptureFault != nil {
		t.AppendRow(table.Row{"Capture fault", res.CaptureFault.Error()})
	}
	if res.ArtifactPath != "" {
		t.AppendRow(table.Row{"Video", res.ArtifactPath})
	}
	if res.FramesDeleted {
		t.AppendRow(table.Row{"Frames", "deleted after encode"})
	} else {
		t.AppendRow(table.Row{"Frames", res.SessionDir})
	}
	t.Render()
}
