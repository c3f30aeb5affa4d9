package inventory

import (
	"sync"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// Store owns the single mutable State of an inventory view.  Every change
// goes through Dispatch, so every state rule lives in Reduce.
type Store struct {
	mu        sync.RWMutex
	state     State
	nextSub   int
	listeners map[int]func(State)
}

// NewStore returns a store with an empty state.
func NewStore(pageSize int) *Store {
	return &Store{state: NewState(pageSize)}
}

// Dispatch applies a and returns the resulting snapshot.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
	return st
}

// Subscribe registers fn to receive the snapshot produced by every later
// Dispatch.  fn runs on the dispatching goroutine after the store lock is
// released; with concurrent dispatchers it may observe snapshots out of
// order.  The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(State))
	}
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Filtered returns the tickets matching the current filter.
func (s *Store) Filtered() []model.Ticket { return s.State().Filtered() }

// Visible returns the tickets of the current page.
func (s *Store) Visible() []model.Ticket { return s.State().Visible() }

// TotalPages returns the page count of the filtered view.
func (s *Store) TotalPages() int { return s.State().TotalPages() }

// Selected returns the selected numbers in ascending order.
func (s *Store) Selected() []string { return s.State().Selection.Numbers() }

// SetFilter changes the status filter and query.  The view returns to
// the first page.
func (s *Store) SetFilter(status StatusFilter, query string) {
	s.Dispatch(FilterChanged{Status: status, Query: query})
}

// Paginate jumps to page n.  n is not clamped; callers keep it within
// [1, TotalPages()].
func (s *Store) Paginate(n int) { s.Dispatch(PageChanged{Page: n}) }

// NextPage advances one page unless already on the last one.
func (s *Store) NextPage() { s.Dispatch(PageStepped{Delta: 1}) }

// PrevPage goes back one page unless already on the first one.
func (s *Store) PrevPage() { s.Dispatch(PageStepped{Delta: -1}) }

// Toggle adds number to the selection, or removes it if present.
func (s *Store) Toggle(number string) { s.Dispatch(SelectionToggled{Number: number}) }

// SelectAll selects exactly the current page when selected is true and
// clears the selection otherwise.
func (s *Store) SelectAll(selected bool) { s.Dispatch(SelectAllChanged{Selected: selected}) }

// OpenSale opens the sale dialog.
func (s *Store) OpenSale() { s.Dispatch(SaleDialogOpened{}) }

// EditBuyer replaces the sale dialog's buyer input.
func (s *Store) EditBuyer(b model.BuyerInfo) { s.Dispatch(BuyerInfoEdited{Buyer: b}) }

// CloseSale closes the sale dialog and discards its input.
func (s *Store) CloseSale() { s.Dispatch(SaleDialogClosed{}) }
