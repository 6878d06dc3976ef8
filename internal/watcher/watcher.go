// Package watcher observes the host's package receipt database for churn.
//
// The receipt store is the ground truth the reconciliation engine probes;
// when something else installs or forgets packages, the watcher notices and
// reports the drift. It never mutates the host: reconciliation remains an
// explicit, operator-driven action.
package watcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce batches receipt-store events that arrive in a burst, such
// as one installer run touching many receipt files.
const DefaultDebounce = 2 * time.Second

// Watcher watches a receipt directory and invokes a callback after each
// settled burst of changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for dir. onChange runs on the watcher goroutine
// after events settle; it must not block for long.
func New(dir string, onChange func(), log zerolog.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	return &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
	}, nil
}

// SetDebounce overrides the settle window (useful for testing).
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching. It returns once the filesystem watch is
// established; events are processed on a background goroutine until Stop.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.log.Info().Str("dir", w.dir).Msg("watching receipt store")

	w.wg.Add(1)
	go w.run()
	return nil
}

// run drains filesystem events, debounces bursts, and fires the callback.
func (w *Watcher) run() {
	defer w.wg.Done()

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("receipt store event")
			if settle == nil {
				settle = time.NewTimer(w.debounce)
				settleC = settle.C
			} else {
				if !settle.Stop() {
					select {
					case <-settle.C:
					default:
					}
				}
				settle.Reset(w.debounce)
			}

		case <-settleC:
			settle = nil
			settleC = nil
			w.log.Info().Str("dir", w.dir).Msg("receipt store changed")
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watch error")

		case <-w.stopCh:
			if settle != nil {
				settle.Stop()
			}
			return
		}
	}
}

// Stop halts the watcher and waits for the event goroutine to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	var err error
	if w.fsw != nil {
		err = w.fsw.Close()
	}
	w.wg.Wait()
	return err
}
