package app

import (
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// HotReloader watches the running binary and fires a callback once a
// newer build appears on disk. Development convenience only.
type HotReloader struct {
	execPath string
	baseline time.Time
	interval time.Duration
	stopCh   chan struct{}

	onNewBinary func()
}

// NewHotReloader watches the current executable. Returns nil when the
// executable cannot be resolved.
func NewHotReloader(interval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	// go build may swap the file behind a symlink.
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
		stopCh:   make(chan struct{}),
	}
}

// OnNewBinary sets the callback, invoked from a background goroutine.
func (h *HotReloader) OnNewBinary(fn func()) { h.onNewBinary = fn }

// Start begins watching in a background goroutine.
func (h *HotReloader) Start() {
	h.stopCh = make(chan struct{})
	go h.watch()
}

// Stop ends the watch.
func (h *HotReloader) Stop() { close(h.stopCh) }

func (h *HotReloader) watch() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
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

// ResetBaseline accepts the current binary as the new baseline, for when
// the user declines a restart.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.baseline = info.ModTime()
	}
}

// Restart replaces the current process with the new binary, preserving
// arguments and environment. Does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
