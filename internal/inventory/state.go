package inventory

import (
	"errors"

	"github.com/iliyamo/raffle-tickets/internal/model"
)

// SaleDraft is the input state of the sale dialog.
type SaleDraft struct {
	Open  bool
	Buyer model.BuyerInfo
}

// State is the complete view state of one raffle's inventory.  A State
// returned by the Store is a snapshot; its slices and maps are shared
// with later snapshots and must be treated as read-only.
type State struct {
	Raffle       *model.Raffle
	Tickets      []model.Ticket
	StatusFilter StatusFilter
	Query        string
	CurrentPage  int
	PageSize     int
	Selection    Selection
	Draft        SaleDraft
	Loading      bool
	Err          string
}

// NewState returns the empty state with the given page size.  A page size
// below one selects DefaultPageSize.
func NewState(pageSize int) State {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return State{
		StatusFilter: FilterAll,
		CurrentPage:  1,
		PageSize:     pageSize,
		Selection:    Selection{},
	}
}

// Filtered returns the tickets matching the current filter and query.
func (s State) Filtered() []model.Ticket {
	return Filter(s.Tickets, s.StatusFilter, s.Query)
}

// Visible returns the tickets on the current page of the filtered view.
func (s State) Visible() []model.Ticket {
	return Page(s.Filtered(), s.CurrentPage, s.PageSize)
}

// TotalPages returns the page count of the filtered view.
func (s State) TotalPages() int {
	return TotalPages(len(s.Filtered()), s.PageSize)
}

// Counts tallies the snapshot's tickets per status.
func (s State) Counts() model.Summary {
	var sum model.Summary
	for _, t := range s.Tickets {
		switch t.Status {
		case model.StatusAvailable:
			sum.Available++
		case model.StatusReserved:
			sum.Reserved++
		case model.StatusSold:
			sum.Sold++
		}
	}
	return sum
}

// Action is a state transition.  The concrete types below are the only
// implementations.
type Action interface{ action() }

type (
	// LoadStarted marks the start of a (re)fetch.
	LoadStarted struct{}
	// SnapshotLoaded replaces the cached raffle and tickets wholesale.
	SnapshotLoaded struct {
		Raffle  model.Raffle
		Tickets []model.Ticket
	}
	// LoadFailed ends a fetch with an error.
	LoadFailed struct{ Err error }
	// OperationFailed records the message of a failed write.  Tickets,
	// selection and draft are left untouched.
	OperationFailed struct{ Err error }
	// FilterChanged sets the status filter and query and returns to page 1.
	FilterChanged struct {
		Status StatusFilter
		Query  string
	}
	// PageChanged jumps to Page without clamping.
	PageChanged struct{ Page int }
	// PageStepped moves one page back (Delta < 0) or forward (Delta > 0).
	// Stepping back from the first page or forward from the last is a
	// no-op; from a page past the end, stepping back still moves.
	PageStepped struct{ Delta int }
	// SelectionToggled adds or removes one number from the selection.
	SelectionToggled struct{ Number string }
	// SelectAllChanged selects exactly the visible page, or clears.
	SelectAllChanged struct{ Selected bool }
	// StatusApplied reflects an acknowledged bulk status update.  It is
	// dropped when RaffleID is not the loaded raffle.
	StatusApplied struct {
		RaffleID       string
		Numbers        []string
		Status         model.TicketStatus
		ClearSelection bool
	}
	// SaleCompleted reflects an acknowledged sale.  It is dropped when
	// RaffleID is not the loaded raffle.
	SaleCompleted struct {
		RaffleID string
		Numbers  []string
		Buyer    model.BuyerInfo
	}
	// SaleDialogOpened opens the sale dialog.
	SaleDialogOpened struct{}
	// BuyerInfoEdited replaces the buyer input of the sale dialog.
	BuyerInfoEdited struct{ Buyer model.BuyerInfo }
	// SaleDialogClosed closes the dialog and discards its input.
	SaleDialogClosed struct{}
)

func (LoadStarted) action()      {}
func (SnapshotLoaded) action()   {}
func (LoadFailed) action()       {}
func (OperationFailed) action()  {}
func (FilterChanged) action()    {}
func (PageChanged) action()      {}
func (PageStepped) action()      {}
func (SelectionToggled) action() {}
func (SelectAllChanged) action() {}
func (StatusApplied) action()    {}
func (SaleCompleted) action()    {}
func (SaleDialogOpened) action() {}
func (BuyerInfoEdited) action()  {}
func (SaleDialogClosed) action() {}

// Reduce applies a to s and returns the new state.  It never modifies the
// slices or maps of s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadStarted:
		s.Loading = true
		s.Err = ""
	case SnapshotLoaded:
		if s.Raffle == nil || s.Raffle.ID != a.Raffle.ID {
			// Numbers of another raffle mean nothing here.
			s.Selection = Selection{}
			s.Draft = SaleDraft{}
			s.CurrentPage = 1
		}
		r := a.Raffle
		s.Raffle = &r
		s.Tickets = a.Tickets
		s.Loading = false
		s.Err = ""
	case LoadFailed:
		s.Loading = false
		s.Err = errMessage(a.Err)
		if errors.Is(a.Err, ErrNotFound) {
			s.Raffle = nil
			s.Tickets = nil
			s.Selection = Selection{}
		}
	case OperationFailed:
		s.Err = errMessage(a.Err)
	case FilterChanged:
		s.StatusFilter = a.Status
		if s.StatusFilter == "" {
			s.StatusFilter = FilterAll
		}
		s.Query = a.Query
		s.CurrentPage = 1
	case PageChanged:
		s.CurrentPage = a.Page
	case PageStepped:
		switch {
		case a.Delta < 0 && s.CurrentPage > 1:
			s.CurrentPage = max(s.CurrentPage+a.Delta, 1)
		case a.Delta > 0 && s.CurrentPage < s.TotalPages():
			s.CurrentPage = min(s.CurrentPage+a.Delta, s.TotalPages())
		}
	case SelectionToggled:
		s.Selection = s.Selection.toggled(a.Number)
	case SelectAllChanged:
		if !a.Selected {
			s.Selection = Selection{}
			break
		}
		visible := s.Visible()
		sel := make(Selection, len(visible))
		for _, t := range visible {
			sel[t.Number] = struct{}{}
		}
		s.Selection = sel
	case StatusApplied:
		if !s.holds(a.RaffleID) {
			break
		}
		s.Tickets = applyStatus(s.Tickets, a.Numbers, a.Status)
		if a.ClearSelection {
			s.Selection = Selection{}
		}
		s.Err = ""
	case SaleCompleted:
		if !s.holds(a.RaffleID) {
			break
		}
		s.Tickets = applySale(s.Tickets, a.Numbers, a.Buyer)
		s.Selection = Selection{}
		s.Draft = SaleDraft{}
		s.Err = ""
	case SaleDialogOpened:
		s.Draft.Open = true
	case BuyerInfoEdited:
		s.Draft.Buyer = a.Buyer
	case SaleDialogClosed:
		s.Draft = SaleDraft{}
	}
	return s
}

// holds reports whether raffleID is the loaded raffle.
func (s State) holds(raffleID string) bool {
	return s.Raffle != nil && s.Raffle.ID == raffleID
}

// applyStatus returns a copy of tickets with status set on every listed
// number.  Moving to available always drops the buyer attribution; other
// targets keep the ticket's fields as they were.
func applyStatus(tickets []model.Ticket, numbers []string, status model.TicketStatus) []model.Ticket {
	set := NewSelection(numbers...)
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		if set.Has(t.Number) {
			t.Status = status
			if status == model.StatusAvailable {
				t.Buyer = nil
			}
		}
		out[i] = t
	}
	return out
}

// applySale returns a copy of tickets where every listed number is sold
// to buyer.
func applySale(tickets []model.Ticket, numbers []string, buyer model.BuyerInfo) []model.Ticket {
	set := NewSelection(numbers...)
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		if set.Has(t.Number) {
			b := buyer
			t.Status = model.StatusSold
			t.Buyer = &b
		}
		out[i] = t
	}
	return out
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
