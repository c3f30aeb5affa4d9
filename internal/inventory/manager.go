package inventory

import (
	"context"
	"sync"
	"sync/atomic"
)

// Manager drives a Store against a Remote.  It loads snapshots, performs
// bulk status transitions and finalizes sales.  Remote calls run under a
// context tied to the Manager's lifetime: Close aborts whatever is in
// flight and drops results that arrive afterwards.
type Manager struct {
	remote Remote
	store  *Store

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // guards raffleID
	raffleID string
	loadSeq  atomic.Uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore makes the Manager drive an existing store.
func WithStore(s *Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithPageSize sets the page size of the Manager's own store.  It has no
// effect together with WithStore.
func WithPageSize(n int) Option {
	return func(m *Manager) {
		if m.store == nil {
			m.store = NewStore(n)
		}
	}
}

// NewManager returns a Manager for remote.  It panics if remote is nil.
func NewManager(remote Remote, opts ...Option) *Manager {
	if remote == nil {
		panic("nil remote passed to NewManager")
	}
	m := &Manager{remote: remote}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewStore(DefaultPageSize)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Store returns the store the Manager mutates.
func (m *Manager) Store() *Store { return m.store }

// RaffleID returns the id of the last raffle passed to Load.
func (m *Manager) RaffleID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raffleID
}

// Close cancels all in-flight remote calls.  Later operations fail with
// ErrClosed.  Close is idempotent.
func (m *Manager) Close() { m.cancel() }

func (m *Manager) closed() bool { return m.ctx.Err() != nil }

// bind derives a context that is cancelled when either ctx or the Manager
// is done.
func (m *Manager) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(m.ctx, func() { cancel(ErrClosed) })
	return ctx, func() {
		stop()
		cancel(nil)
	}
}
