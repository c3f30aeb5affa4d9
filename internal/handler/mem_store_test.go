package handler_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-tickets/internal/handler"
	"github.com/iliyamo/raffle-tickets/internal/model"
	"github.com/iliyamo/raffle-tickets/internal/queue"
	"github.com/iliyamo/raffle-tickets/internal/repository"
)

// memStore is an in-memory RaffleStore and TicketStore with the same
// semantics as the MySQL repositories.
type memStore struct {
	mu       sync.Mutex
	raffles  map[string]model.Raffle
	tickets  map[string]map[string]model.Ticket
	failNext error
}

func newMemStore(raffles ...model.Raffle) *memStore {
	s := &memStore{raffles: map[string]model.Raffle{}, tickets: map[string]map[string]model.Ticket{}}
	for _, r := range raffles {
		s.raffles[r.ID] = r
	}
	return s
}

func (s *memStore) fail() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Raffle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.raffles[id]
	if !ok {
		return nil, repository.ErrRaffleNotFound
	}
	return &r, nil
}

func (s *memStore) ListByRaffle(_ context.Context, raffleID string) ([]model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	out := []model.Ticket{}
	for _, t := range s.tickets[raffleID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *memStore) Summary(_ context.Context, raffleID string) (model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum model.Summary
	for _, t := range s.tickets[raffleID] {
		switch t.Status {
		case model.StatusAvailable:
			sum.Available++
		case model.StatusReserved:
			sum.Reserved++
		case model.StatusSold:
			sum.Sold++
		}
	}
	return sum, nil
}

func (s *memStore) Initialize(_ context.Context, raffleID string, total int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tickets[raffleID]) > 0 {
		return 0, repository.ErrConflict
	}
	m := map[string]model.Ticket{}
	for _, n := range model.Numbers(total) {
		m[n] = model.Ticket{Number: n, Status: model.StatusAvailable}
	}
	s.tickets[raffleID] = m
	return len(m), nil
}

// UpdateStatus counts changed rows only, like MySQL's affected rows.
func (s *memStore) UpdateStatus(_ context.Context, raffleID string, numbers []string, status model.TicketStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return 0, err
	}
	if status == model.StatusSold {
		return 0, repository.ErrSoldNeedsBuyer
	}
	var n int64
	for _, num := range numbers {
		t, ok := s.tickets[raffleID][num]
		if !ok {
			continue
		}
		changed := t.Status != status || (status == model.StatusAvailable && t.Buyer != nil)
		t.Status = status
		if status == model.StatusAvailable {
			t.Buyer = nil
		}
		s.tickets[raffleID][num] = t
		if changed {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CompleteSale(_ context.Context, raffleID string, numbers []string, buyer model.BuyerInfo) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return 0, err
	}
	var n int64
	for _, num := range numbers {
		t, ok := s.tickets[raffleID][num]
		if !ok {
			continue
		}
		b := buyer
		t.Status = model.StatusSold
		t.Buyer = &b
		s.tickets[raffleID][num] = t
		n++
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TicketsSoldEvent
	err    error
}

func (p *recordingPublisher) PublishTicketsSold(_ context.Context, ev queue.TicketsSoldEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, raffleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, raffleID)
	return nil
}

var errDB = errors.New("connection reset")

// newServer registers the raffle routes without auth, which the router
// package adds.
func newServer(h *handler.RaffleHandler) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.GET("/raffle/:id", h.GetRaffle)
	e.GET("/raffle/:id/tickets", h.ListTickets)
	e.GET("/raffle/:id/tickets/summary", h.Summary)
	e.POST("/raffle/:id/tickets/init", h.InitTickets)
	e.PATCH("/raffle/:id/tickets/status", h.UpdateStatus)
	e.POST("/raffle/:id/complete-sale", h.CompleteSale)
	return e
}

func spring() model.Raffle {
	return model.Raffle{ID: "spring", Name: "Spring Draw", Prize: "Bike", TotalTickets: 12, TicketPrice: 5, DrawMethod: "lottery", IsActive: true}
}
