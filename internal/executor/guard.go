package executor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// StopFileName is the intervention file a user can drop into the repository
// root to stop a run in flight. The executor treats it exactly like a
// termination signal: cancel, restore, exit.
const StopFileName = "VERDANT_STOP"

// StopGuard watches a directory for the stop file and cancels the run
// context when it appears.
type StopGuard struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStopGuard starts watching dir. If the stop file already exists the
// cancel fires immediately. Callers must Stop the guard when the run ends.
func NewStopGuard(dir string, cancel context.CancelFunc) (*StopGuard, error) {
	if _, err := os.Stat(filepath.Join(dir, StopFileName)); err == nil {
		cancel()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	g := &StopGuard{watcher: fw, done: make(chan struct{})}
	go g.loop(cancel)
	return g, nil
}

// Stop closes the watcher and waits for the event loop to exit.
func (g *StopGuard) Stop() {
	g.watcher.Close()
	<-g.done
}

func (g *StopGuard) loop(cancel context.CancelFunc) {
	defer close(g.done)
	for {
		select {
		case ev, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != StopFileName {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cancel()
			}
		case _, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the signal path still works.
		}
	}
}
