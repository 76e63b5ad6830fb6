package app

import (
	"log"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// HotReloader polls the running binary's modification time and fires a
// callback once a newer build appears on disk. Development convenience:
// the editor offers a restart instead of making the user quit and
// relaunch after recompiling.
type HotReloader struct {
	execPath string
	baseline time.Time
	interval time.Duration
	stop     chan struct{}

	onNewBinary func()
}

// NewHotReloader watches the current executable at the given interval.
// Returns nil when the executable path cannot be resolved, in which case
// hot reload is simply unavailable.
func NewHotReloader(interval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}

	// go build writes a fresh file; resolve symlinks so the stat below
	// follows the real binary rather than a stale link target.
	if real, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = real
	}

	info, err := os.Stat(execPath)
	if err != nil {
		return nil
	}

	return &HotReloader{
		execPath: execPath,
		baseline: info.ModTime(),
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// OnNewBinary sets the callback fired when a newer binary is detected.
// It runs on the watcher goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.onNewBinary = callback
}

// Start begins polling in a background goroutine. The watcher fires at
// most once; call Start again (after ResetBaseline) to resume watching.
func (h *HotReloader) Start() {
	h.stop = make(chan struct{})
	go h.watch()
}

// Stop halts the watcher goroutine.
func (h *HotReloader) Stop() {
	close(h.stop)
}

func (h *HotReloader) watch() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			info, err := os.Stat(h.execPath)
			if err != nil {
				continue
			}
			if info.ModTime().After(h.baseline) {
				if h.onNewBinary != nil {
					h.onNewBinary()
				}
				return
			}
		}
	}
}

// ResetBaseline accepts the binary currently on disk as the reference
// version. Called when the user declines a restart so the prompt does
// not repeat for the same build.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.baseline = info.ModTime()
	}
}

// ExecPath returns the watched executable path.
func (h *HotReloader) ExecPath() string {
	return h.execPath
}

// StartupTime returns the binary's modification time at program start.
func (h *HotReloader) StartupTime() time.Time {
	return h.baseline
}

// Restart replaces the current process with a fresh instance of the
// binary, preserving arguments and environment. Does not return on
// success.
func (h *HotReloader) Restart() error {
	log.Printf("Replacing process with %s", h.execPath)
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
