package serial

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultDevDir is where serial device nodes appear.
const DefaultDevDir = "/dev"

// Node name prefixes treated as serial endpoints.
var ttyPrefixes = []string{"ttyUSB", "ttyACM", "rfcomm", "tty.", "cu."}

// Watcher waits for serial device nodes to be created.
type Watcher struct {
	Dir string
	// Settle is how long to wait after a node appears so udev can finish
	// setting it up.
	Settle time.Duration

	logger ports.Logger
}

// NewWatcher creates a watcher on dir (DefaultDevDir when empty).
func NewWatcher(dir string, logger ports.Logger) *Watcher {
	if dir == "" {
		dir = DefaultDevDir
	}
	return &Watcher{Dir: dir, Settle: 250 * time.Millisecond, logger: logger}
}

// WaitForPorts returns when a serial node is created in the watched
// directory or when timeout elapses. A timeout is not an error; the caller
// lists ports again either way.
func (w *Watcher) WaitForPorts(ctx context.Context, timeout time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-deadline.C:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 || !isSerialNode(event.Name) {
				continue
			}
			w.logger.Info("serial port appeared", ports.String("port", event.Name))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.Settle):
			}
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("port watcher error", ports.Err(err))
		}
	}
}

func isSerialNode(path string) bool {
	base := filepath.Base(path)
	for _, p := range ttyPrefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}
