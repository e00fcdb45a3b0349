package debounce

import (
	"sync"
	"time"
)

// Debounce returns a function that runs fn once d has passed without
// another call. Each call restarts the wait.
//
// The second function cancels: it drops a pending run, waits for a running
// fn to return and makes later calls no-ops.
func Debounce(d time.Duration, fn func()) (func(), func()) {
	var (
		mu      sync.Mutex
		runMu   sync.Mutex
		timer   *time.Timer
		stopped bool
	)

	fire := func() {
		runMu.Lock()
		defer runMu.Unlock()

		mu.Lock()
		skip := stopped
		mu.Unlock()
		if !skip {
			fn()
		}
	}

	debounced := func() {
		mu.Lock()
		defer mu.Unlock()

		if stopped {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, fire)
	}

	cancel := func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()

		runMu.Lock()
		defer runMu.Unlock()
	}

	return debounced, cancel
}
