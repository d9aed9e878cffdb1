package config

import (
	"context"
	"os"
	"time"
)

// Watcher polls file modification times and calls onChange for each file
// that changed since the previous poll.
type Watcher struct {
	paths    []string
	interval time.Duration
	onChange func(path string)

	lastMTime map[string]time.Time
}

// NewWatcher watches paths every interval.
func NewWatcher(paths []string, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		paths:     paths,
		interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is done. The first scan only records mtimes.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) scan(prime bool) {
	for _, p := range w.paths {
		fi, err := os.Stat(p)
		if err != nil {
			// missing for now; may appear later
			continue
		}
		mt := fi.ModTime()
		last, seen := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime || w.onChange == nil {
			continue
		}
		if !seen || mt.After(last) {
			w.onChange(p)
		}
	}
}
