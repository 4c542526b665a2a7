package faq

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Reloader rebuilds the Bot when the FAQ file changes on disk and hands the
// new Bot to apply. A failed reload keeps the previous Bot in service.
type Reloader struct {
	path  string
	opts  Options
	apply func(*Bot)

	mu      sync.Mutex
	modTime time.Time
	size    int64
	loaded  bool
}

func NewReloader(path string, opts Options, apply func(*Bot)) *Reloader {
	return &Reloader{path: path, opts: opts, apply: apply}
}

// Check loads the file when it has never been loaded or its modification
// time or size changed since the last successful load.
func (r *Reloader) Check() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("faq: FAQ file not found: %s", r.path)
		}
		return false, fmt.Errorf("faq: checking %s: %w", r.path, err)
	}
	if r.loaded && info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		return false, nil
	}

	bot, err := LoadBot(r.path, r.opts)
	if err != nil {
		return false, err
	}

	r.modTime = info.ModTime()
	r.size = info.Size()
	r.loaded = true
	r.apply(bot)
	return true, nil
}
