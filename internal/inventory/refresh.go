package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/logger"
)

// RefreshHandle controls a scheduled refresh started by StartRefresh.
type RefreshHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the schedule and any refetch it has in flight, then waits
// for the refresh goroutine to exit.  Stop is idempotent.
func (h *RefreshHandle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the refresh goroutine has exited, either through
// Stop or because the Manager was closed.
func (h *RefreshHandle) Done() <-chan struct{} { return h.done }

// StartRefresh refetches the loaded raffle every interval until the
// returned handle is stopped or the Manager is closed.  Refresh errors are
// passed to onErr when it is non-nil and logged otherwise; they do not
// stop the schedule.
func (m *Manager) StartRefresh(interval time.Duration, onErr func(error)) *RefreshHandle {
	if interval <= 0 {
		interval = time.Minute
	}
	ctx, cancel := context.WithCancel(m.ctx)
	h := &RefreshHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				err := m.Refetch(ctx)
				if err == nil || errors.Is(err, ErrClosed) || ctx.Err() != nil {
					continue
				}
				if onErr != nil {
					onErr(err)
				} else {
					logger.Warningf("inventory: scheduled refresh: %v", err)
				}
			}
		}
	}()
	return h
}
