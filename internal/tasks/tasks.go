// Package tasks runs background jobs on a fixed interval until stopped.
package tasks

import (
	"context"
	"sync"
	"time"
)

// Func is one run of a periodic job. Its error is reported to the
// task's error handler and does not stop the schedule.
type Func func(ctx context.Context) error

// Handle controls a running periodic task.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the task and waits for an in-flight run to return.
// It is safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the task has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Every runs fn each interval until ctx is cancelled or Stop is called.
// The first run happens one interval after the call. onErr, if not nil,
// receives every error fn returns.
func Every(ctx context.Context, interval time.Duration, fn Func, onErr func(error)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := fn(ctx); err != nil && onErr != nil {
					onErr(err)
				}
			}
		}
	}()

	return h
}
