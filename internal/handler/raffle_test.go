package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iliyamo/raffle-tickets/internal/handler"
	"github.com/iliyamo/raffle-tickets/internal/model"
)

type fixture struct {
	store *memStore
	pub   *recordingPublisher
	cache *recordingCache
	srv   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(spring()), pub: &recordingPublisher{}, cache: &recordingCache{}}
	if _, err := f.store.Initialize(context.Background(), "spring", 12); err != nil {
		t.Fatal(err)
	}
	f.srv = newServer(handler.NewRaffleHandler(f.store, f.store, f.pub, f.cache))
	f.cache.invalidated = nil
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestGetRaffle(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/raffle/spring", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got model.Raffle
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != spring() {
		t.Fatalf("raffle = %+v", got)
	}

	rec = f.do(http.MethodGet, "/raffle/winter", "")
	if rec.Code != http.StatusNotFound || errorBody(t, rec) != "raffle not found" {
		t.Fatalf("unknown raffle: %d %s", rec.Code, rec.Body.String())
	}
}

func TestListTicketsAndSummary(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/raffle/spring/tickets", "")
	var tickets []model.Ticket
	if err := json.Unmarshal(rec.Body.Bytes(), &tickets); err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 12 || tickets[0].Number != "001" || tickets[11].Number != "012" {
		t.Fatalf("tickets = %+v", tickets)
	}

	rec = f.do(http.MethodGet, "/raffle/spring/tickets/summary", "")
	var sum model.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum != (model.Summary{Available: 12}) {
		t.Fatalf("summary = %+v", sum)
	}

	f.store.failNext = errDB
	rec = f.do(http.MethodGet, "/raffle/spring/tickets", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("db failure status = %d", rec.Code)
	}
}

func TestInitTickets(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/raffle/spring/tickets/init", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second init status = %d", rec.Code)
	}

	f.store.raffles["autumn"] = model.Raffle{ID: "autumn", TotalTickets: 1000}
	rec = f.do(http.MethodPost, "/raffle/autumn/tickets/init", "")
	if rec.Code != http.StatusCreated || strings.TrimSpace(rec.Body.String()) != `{"created":1000}` {
		t.Fatalf("init: %d %s", rec.Code, rec.Body.String())
	}
	if _, ok := f.store.tickets["autumn"]["0001"]; !ok {
		t.Fatal("ticket 0001 missing for a 1000 ticket raffle")
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "autumn" {
		t.Fatalf("invalidated = %v", f.cache.invalidated)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		path string
		body string
		code int
		msg  string
	}{
		{"empty list", "/raffle/spring/tickets/status", `{"ticketNumbers":[],"status":"sold"}`, http.StatusBadRequest, "ticketNumbers must not be empty"},
		{"bad number", "/raffle/spring/tickets/status", `{"ticketNumbers":["00a"],"status":"sold"}`, http.StatusBadRequest, "invalid ticket number: 00a"},
		{"bad status", "/raffle/spring/tickets/status", `{"ticketNumbers":["001"],"status":"held"}`, http.StatusBadRequest, "invalid status"},
		{"bad json", "/raffle/spring/tickets/status", `{"ticketNumbers":`, http.StatusBadRequest, "invalid body"},
		{"sold", "/raffle/spring/tickets/status", `{"ticketNumbers":["001"],"status":"sold"}`, http.StatusBadRequest, "use complete-sale to sell tickets"},
		{"unknown raffle", "/raffle/winter/tickets/status", `{"ticketNumbers":["001"],"status":"reserved"}`, http.StatusNotFound, "raffle not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPatch, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := errorBody(t, rec); got != tt.msg {
				t.Fatalf("error = %q, want %q", got, tt.msg)
			}
		})
	}
	if len(f.cache.invalidated) != 0 {
		t.Fatalf("rejected writes invalidated the cache: %v", f.cache.invalidated)
	}
	if got := f.store.tickets["spring"]["001"]; got.Status != model.StatusAvailable || got.Buyer != nil {
		t.Fatalf("rejected writes changed ticket 001: %+v", got)
	}
}

func TestUpdateStatusCountsChangedRows(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPatch, "/raffle/spring/tickets/status", `{"ticketNumbers":["001","002","001"],"status":"reserved"}`)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true,"modifiedCount":2}` {
		t.Fatalf("reserve: %d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(http.MethodPatch, "/raffle/spring/tickets/status", `{"ticketNumbers":["001","003"],"status":"reserved"}`)
	if strings.TrimSpace(rec.Body.String()) != `{"success":true,"modifiedCount":1}` {
		t.Fatalf("re-reserve: %s", rec.Body.String())
	}
	if len(f.cache.invalidated) != 2 {
		t.Fatalf("invalidated = %v", f.cache.invalidated)
	}
}

func TestCompleteSale(t *testing.T) {
	f := newFixture(t)
	body := `{"ticketNumbers":["004","005"],"buyerInfo":{"name":"  Ana Ruiz ","email":"ana@x.io","transactionId":"TX-9"}}`
	rec := f.do(http.MethodPost, "/raffle/spring/complete-sale", body)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true,"modifiedCount":2}` {
		t.Fatalf("sale: %d %s", rec.Code, rec.Body.String())
	}
	got := f.store.tickets["spring"]["004"]
	if got.Status != model.StatusSold || got.Buyer == nil || got.Buyer.Name != "Ana Ruiz" {
		t.Fatalf("ticket 004 = %+v", got)
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("events = %d", len(f.pub.events))
	}
	ev := f.pub.events[0]
	if ev.RaffleID != "spring" || ev.ModifiedCount != 2 || ev.BuyerName != "Ana Ruiz" || ev.TransactionID != "TX-9" || ev.EventID == "" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestCompleteSaleRequiresBuyerName(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/raffle/spring/complete-sale", `{"ticketNumbers":["004"],"buyerInfo":{"name":"   "}}`)
	if rec.Code != http.StatusBadRequest || errorBody(t, rec) != "buyer name is required" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if f.store.tickets["spring"]["004"].Status != model.StatusAvailable || len(f.pub.events) != 0 {
		t.Fatal("rejected sale changed state")
	}
}

func TestCompleteSalePublishFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	rec := f.do(http.MethodPost, "/raffle/spring/complete-sale", `{"ticketNumbers":["007"],"buyerInfo":{"name":"Bo"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.store.tickets["spring"]["007"].Status != model.StatusSold {
		t.Fatal("sale not committed")
	}
}

func TestCompleteSaleDBFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failNext = errDB
	rec := f.do(http.MethodPost, "/raffle/spring/complete-sale", `{"ticketNumbers":["007"],"buyerInfo":{"name":"Bo"}}`)
	if rec.Code != http.StatusInternalServerError || errorBody(t, rec) != "db error" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if len(f.pub.events) != 0 || len(f.cache.invalidated) != 0 {
		t.Fatal("failed sale had side effects")
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	for _, tc := range []struct {
		db   handler.Pinger
		code int
	}{
		{nil, http.StatusOK},
		{pinger{}, http.StatusOK},
		{pinger{err: errDB}, http.StatusServiceUnavailable},
	} {
		rec := httptest.NewRecorder()
		c := newServer(handler.NewRaffleHandler(newMemStore(), newMemStore(), nil, nil)).NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
		if err := handler.Health(tc.db)(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.code {
			t.Fatalf("health = %d, want %d", rec.Code, tc.code)
		}
	}
}
