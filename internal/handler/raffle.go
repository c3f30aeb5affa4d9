package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/logger"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-tickets/internal/model"
	"github.com/iliyamo/raffle-tickets/internal/queue"
	"github.com/iliyamo/raffle-tickets/internal/repository"
)

// RaffleStore reads raffles.  *repository.RaffleRepo implements it.
type RaffleStore interface {
	GetByID(ctx context.Context, id string) (*model.Raffle, error)
}

// TicketStore reads and mutates tickets.  *repository.TicketRepo
// implements it.
type TicketStore interface {
	ListByRaffle(ctx context.Context, raffleID string) ([]model.Ticket, error)
	Summary(ctx context.Context, raffleID string) (model.Summary, error)
	Initialize(ctx context.Context, raffleID string, total int) (int, error)
	UpdateStatus(ctx context.Context, raffleID string, numbers []string, status model.TicketStatus) (int64, error)
	CompleteSale(ctx context.Context, raffleID string, numbers []string, buyer model.BuyerInfo) (int64, error)
}

// SalePublisher announces completed sales.  *service.SalePublisher
// implements it.
type SalePublisher interface {
	PublishTicketsSold(ctx context.Context, event queue.TicketsSoldEvent) error
}

// CacheInvalidator drops cached responses of a raffle after a write.
// *middleware.RaffleCache implements it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, raffleID string) error
}

// RaffleHandler serves the raffle and ticket routes.  Read routes are
// public; write routes assume JWT authentication and the admin role have
// been checked by middleware.
type RaffleHandler struct {
	Raffles   RaffleStore      // raffle lookups
	Tickets   TicketStore      // ticket persistence
	Publisher SalePublisher    // optional; nil disables sale events
	Cache     CacheInvalidator // optional; nil when responses are not cached
}

// NewRaffleHandler constructs a RaffleHandler.  The stores must be
// non-nil; publisher and cache may be nil.
func NewRaffleHandler(raffles RaffleStore, tickets TicketStore, publisher SalePublisher, cache CacheInvalidator) *RaffleHandler {
	if raffles == nil || tickets == nil {
		panic("nil repository passed to NewRaffleHandler")
	}
	return &RaffleHandler{Raffles: raffles, Tickets: tickets, Publisher: publisher, Cache: cache}
}

type statusRequest struct {
	TicketNumbers []string `json:"ticketNumbers"`
	Status        string   `json:"status"`
}

type saleRequest struct {
	TicketNumbers []string        `json:"ticketNumbers"`
	BuyerInfo     model.BuyerInfo `json:"buyerInfo"`
}

// GetRaffle handles GET /raffle/:id.
func (h *RaffleHandler) GetRaffle(c echo.Context) error {
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rf)
}

// ListTickets handles GET /raffle/:id/tickets and returns every ticket of
// the raffle ordered by number.  Filtering and paging happen client side.
func (h *RaffleHandler) ListTickets(c echo.Context) error {
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	tickets, err := h.Tickets.ListByRaffle(c.Request().Context(), rf.ID)
	if err != nil {
		logger.Errorf("list tickets %s: %v", rf.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, tickets)
}

// Summary handles GET /raffle/:id/tickets/summary.
func (h *RaffleHandler) Summary(c echo.Context) error {
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	sum, err := h.Tickets.Summary(c.Request().Context(), rf.ID)
	if err != nil {
		logger.Errorf("summary %s: %v", rf.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, sum)
}

// InitTickets handles POST /raffle/:id/tickets/init.  It creates tickets
// 1..totalTickets, all available, and answers 409 when the raffle already
// has tickets.
func (h *RaffleHandler) InitTickets(c echo.Context) error {
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	if rf.TotalTickets <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "raffle has no tickets to create"})
	}
	created, err := h.Tickets.Initialize(c.Request().Context(), rf.ID, rf.TotalTickets)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "tickets already initialized"})
		}
		logger.Errorf("init tickets %s: %v", rf.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.invalidate(c, rf.ID)
	return c.JSON(http.StatusCreated, echo.Map{"created": created})
}

// UpdateStatus handles PATCH /raffle/:id/tickets/status.  The body holds
// "ticketNumbers" and the target "status".  Moving tickets back to
// available clears their buyer data.  Sold is refused with 400; only
// CompleteSale sells, since a sold ticket must carry a buyer.
func (h *RaffleHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	numbers, msg := cleanNumbers(req.TicketNumbers)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if status == model.StatusSold {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "use complete-sale to sell tickets"})
	}
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	n, err := h.Tickets.UpdateStatus(c.Request().Context(), rf.ID, numbers, status)
	if err != nil {
		logger.Errorf("update status %s: %v", rf.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.invalidate(c, rf.ID)
	return c.JSON(http.StatusOK, model.UpdateResult{Success: true, ModifiedCount: int(n)})
}

// CompleteSale handles POST /raffle/:id/complete-sale.  The tickets are
// marked sold and attributed to "buyerInfo", whose name is required.  A
// tickets.sold event is published after the commit; publish failures are
// logged and do not fail the request.
func (h *RaffleHandler) CompleteSale(c echo.Context) error {
	var req saleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	numbers, msg := cleanNumbers(req.TicketNumbers)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	buyer := trimBuyer(req.BuyerInfo)
	if buyer.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer name is required"})
	}
	rf, err := h.raffle(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	n, err := h.Tickets.CompleteSale(ctx, rf.ID, numbers, buyer)
	if err != nil {
		logger.Errorf("complete sale %s: %v", rf.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.invalidate(c, rf.ID)

	if h.Publisher != nil && n > 0 {
		ev := queue.NewTicketsSoldEvent(rf.ID, numbers, buyer, int(n))
		if err := h.Publisher.PublishTicketsSold(ctx, ev); err != nil {
			logger.Warningf("publish tickets.sold %s for raffle %s: %v", ev.EventID, rf.ID, err)
		}
	}
	return c.JSON(http.StatusOK, model.UpdateResult{Success: true, ModifiedCount: int(n)})
}

// raffle loads the raffle named by the :id path parameter.  Failures
// come back as *echo.HTTPError for ErrorHandler to render.
func (h *RaffleHandler) raffle(c echo.Context) (*model.Raffle, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid raffle id")
	}
	rf, err := h.Raffles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "raffle not found")
		}
		logger.Errorf("get raffle %s: %v", id, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rf, nil
}

func (h *RaffleHandler) invalidate(c echo.Context, raffleID string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(c.Request().Context(), raffleID); err != nil {
		logger.Warningf("cache invalidate raffle %s: %v", raffleID, err)
	}
}

// cleanNumbers trims, validates and deduplicates ticket numbers, keeping
// first-seen order.  It returns a non-empty message when the list is
// unusable.
func cleanNumbers(raw []string) ([]string, string) {
	if len(raw) == 0 {
		return nil, "ticketNumbers must not be empty"
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if !model.ValidNumber(n) {
			return nil, "invalid ticket number: " + n
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, ""
}

func trimBuyer(b model.BuyerInfo) model.BuyerInfo {
	return model.BuyerInfo{
		Name:          strings.TrimSpace(b.Name),
		Email:         strings.TrimSpace(b.Email),
		Phone:         strings.TrimSpace(b.Phone),
		TransactionID: strings.TrimSpace(b.TransactionID),
	}
}
