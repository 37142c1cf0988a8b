package editor

import (
	"reflect"
	"sync"
	"time"
)

// debouncer coalesces rapid triggers into a single deferred call. Standard
// debounce semantics: every trigger supersedes the pending timer.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (d *debouncer) trigger(interval time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(interval, fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// valuesEqual compares field values without panicking on slice-typed ones.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
