// Package controlwatch translates writes to a control file into session
// signals, so a headless recorder can be started, stopped, or aborted from
// another process (or a cron job) without a console attached.
//
// Writing the word "start", "stop", or "quit" into the watched file raises
// the corresponding signal.
package controlwatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cantin-ortiz/camera-capture-tool/internal/ports"
	"github.com/cantin-ortiz/camera-capture-tool/internal/signals"
)

const debounceDelay = 100 * time.Millisecond

// Watcher monitors one control file via fsnotify.
type Watcher struct {
	path string
	sig  *signals.Set
	log  ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a watcher for the given control file path.
func New(path string, sig *signals.Set, logger ports.Logger) *Watcher {
	return &Watcher{path: path, sig: sig, log: logger}
}

// Run watches until the context is cancelled. Watch errors are logged, not
// fatal; the console and OS signals remain as control paths.
func (w *Watcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn("control watcher unavailable", ports.Err(err))
		return
	}
	defer watcher.Close()

	// Watch the directory: editors and `echo >file` replace the file, and a
	// watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.log.Warn("control watcher failed to start",
			ports.String("path", w.path),
			ports.Err(err),
		)
		return
	}
	w.log.Info("control file active", ports.String("path", w.path))

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceApply()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("control watcher error", ports.Err(err))
		}
	}
}

// debounceApply coalesces the write+create bursts editors produce into one
// read of the control file.
func (w *Watcher) debounceApply() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.apply)
}

func (w *Watcher) apply() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("control file unreadable", ports.Err(err))
		return
	}

	command := strings.ToLower(strings.TrimSpace(string(data)))
	switch command {
	case "start":
		w.log.Info("start requested via control file")
		w.sig.RequestStart()
	case "stop":
		w.log.Info("stop requested via control file")
		w.sig.RequestStop()
	case "quit":
		w.log.Info("quit requested via control file")
		w.sig.RequestQuit()
	case "":
	default:
		w.log.Warn("unknown control command", ports.String("command", command))
	}
}
