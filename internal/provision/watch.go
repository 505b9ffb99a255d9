package provision

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange whenever the file at Path is written or replaced.
type Watcher struct {
	Path string
	// Debounce is how long the file must stay unchanged before OnChange runs.
	// Editors often write a file in several steps.
	Debounce time.Duration
	OnChange func(ctx context.Context) error
}

// Run watches until ctx is cancelled. Errors returned by OnChange are logged
// and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	path := filepath.Clean(w.Path)

	// Watch the directory rather than the file, so that the watch survives
	// editors that save by renaming a new file over the old one.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	stopTimer(timer)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Printf("Change detected: %s", event.Name)
			resetTimer(timer, debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error on %s: %v", path, err)
		case <-timer.C:
			if err := w.OnChange(ctx); err != nil {
				log.Printf("Failed to provision after change to %s: %v", path, err)
			}
		}
	}
}

// stopTimer stops t and discards a tick that fired but was not received.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// resetTimer restarts t so that it fires once, d from now.
func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
