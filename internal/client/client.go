// Package client talks to the raffle ticket service over HTTP/JSON.  It
// implements inventory.Remote.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/raffle-tickets/internal/inventory"
	"github.com/iliyamo/raffle-tickets/internal/model"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client is an inventory.Remote backed by the HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New returns a client for the service at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ inventory.Remote = (*Client)(nil)

type statusRequest struct {
	TicketNumbers []string           `json:"ticketNumbers"`
	Status        model.TicketStatus `json:"status"`
}

type saleRequest struct {
	TicketNumbers []string        `json:"ticketNumbers"`
	BuyerInfo     model.BuyerInfo `json:"buyerInfo"`
}

// Raffle handles GET /raffle/{id}.
func (c *Client) Raffle(ctx context.Context, raffleID string) (model.Raffle, error) {
	var r model.Raffle
	err := c.do(ctx, "fetch raffle", http.MethodGet, rafflePath(raffleID), nil, &r)
	return r, err
}

// Tickets handles GET /raffle/{id}/tickets.
func (c *Client) Tickets(ctx context.Context, raffleID string) ([]model.Ticket, error) {
	var ts []model.Ticket
	err := c.do(ctx, "fetch tickets", http.MethodGet, rafflePath(raffleID)+"/tickets", nil, &ts)
	return ts, err
}

// Summary handles GET /raffle/{id}/tickets/summary.
func (c *Client) Summary(ctx context.Context, raffleID string) (model.Summary, error) {
	var s model.Summary
	err := c.do(ctx, "fetch summary", http.MethodGet, rafflePath(raffleID)+"/tickets/summary", nil, &s)
	return s, err
}

// UpdateStatus handles PATCH /raffle/{id}/tickets/status.
func (c *Client) UpdateStatus(ctx context.Context, raffleID string, numbers []string, status model.TicketStatus) (model.UpdateResult, error) {
	var res model.UpdateResult
	body := statusRequest{TicketNumbers: numbers, Status: status}
	err := c.do(ctx, "update status", http.MethodPatch, rafflePath(raffleID)+"/tickets/status", body, &res)
	return res, err
}

// CompleteSale handles POST /raffle/{id}/complete-sale.
func (c *Client) CompleteSale(ctx context.Context, raffleID string, numbers []string, buyer model.BuyerInfo) (model.UpdateResult, error) {
	var res model.UpdateResult
	body := saleRequest{TicketNumbers: numbers, BuyerInfo: buyer}
	err := c.do(ctx, "complete sale", http.MethodPost, rafflePath(raffleID)+"/complete-sale", body, &res)
	return res, err
}

// InitTickets handles POST /raffle/{id}/tickets/init, which creates the
// ticket set of a new raffle.
func (c *Client) InitTickets(ctx context.Context, raffleID string) (int, error) {
	var res struct {
		Created int `json:"created"`
	}
	err := c.do(ctx, "init tickets", http.MethodPost, rafflePath(raffleID)+"/tickets/init", nil, &res)
	return res.Created, err
}

func rafflePath(id string) string { return "/raffle/" + url.PathEscape(id) }

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &inventory.RemoteError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &inventory.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &inventory.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			if msg == "" {
				msg = "resource not found"
			}
			return fmt.Errorf("%s: %s: %w", op, msg, inventory.ErrNotFound)
		}
		return &inventory.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &inventory.RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts the "error" field the service puts in error
// bodies, falling back to the raw text.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *inventory.RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
