package client

import (
	"context"
	"sync"
	"time"

	"creditoya-web/internal/pkg/logger"
)

// DefaultDebounce is how long an edited field waits before it is saved
const DefaultDebounce = 3 * time.Second

// SaveState is the state of an auto-saved field
type SaveState int

const (
	SaveClean SaveState = iota
	SaveDirty
	SaveSaving
)

func (s SaveState) String() string {
	switch s {
	case SaveClean:
		return "clean"
	case SaveDirty:
		return "dirty"
	case SaveSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// SaveFunc persists a field value
type SaveFunc func(ctx context.Context, value string) error

// AutoSaver coalesces rapid edits of one text field into a single save.
// Values pushed from outside with Sync are ignored while an edit is
// pending or being saved, so a refresh never overwrites what the user typed.
type AutoSaver struct {
	ctx   context.Context
	save  SaveFunc
	delay time.Duration

	mu    sync.Mutex
	state SaveState
	value string
	saved string
	timer *time.Timer
	err   error
}

// NewAutoSaver tracks a field whose stored value is initial. A delay of
// zero means DefaultDebounce. ctx is passed to every save.
func NewAutoSaver(ctx context.Context, initial string, delay time.Duration, save SaveFunc) *AutoSaver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &AutoSaver{
		ctx:   ctx,
		save:  save,
		delay: delay,
		value: initial,
		saved: initial,
	}
}

// Set records an edit and restarts the debounce timer
func (a *AutoSaver) Set(value string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.value = value
	if a.state == SaveSaving {
		return
	}
	if value == a.saved {
		a.stopTimer()
		a.state = SaveClean
		return
	}
	a.state = SaveDirty
	a.armTimer()
}

// Blur saves a pending edit right away
func (a *AutoSaver) Blur() error {
	a.mu.Lock()
	a.stopTimer()
	a.mu.Unlock()
	return a.flush()
}

// Sync applies a value loaded from the server. It only takes effect when
// the field is clean and reports whether it did.
func (a *AutoSaver) Sync(value string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != SaveClean {
		return false
	}
	a.value = value
	a.saved = value
	return true
}

// Value is what the input shows
func (a *AutoSaver) Value() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// State returns the current save state
func (a *AutoSaver) State() SaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err is the error of the last save, if it failed
func (a *AutoSaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close stops a pending timer without saving
func (a *AutoSaver) Close() {
	a.mu.Lock()
	a.stopTimer()
	a.mu.Unlock()
}

func (a *AutoSaver) flush() error {
	a.mu.Lock()
	if a.state != SaveDirty {
		a.mu.Unlock()
		return nil
	}
	value := a.value
	a.state = SaveSaving
	a.mu.Unlock()

	err := a.save(a.ctx, value)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.err = err
	if err != nil {
		logger.Log.WithError(err).Warn("auto-save failed")
		a.state = SaveDirty
		return err
	}

	a.saved = value
	if a.value != a.saved {
		a.state = SaveDirty
		a.armTimer()
		return nil
	}
	a.state = SaveClean
	return nil
}

func (a *AutoSaver) armTimer() {
	a.stopTimer()
	a.timer = time.AfterFunc(a.delay, func() { _ = a.flush() })
}

func (a *AutoSaver) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
