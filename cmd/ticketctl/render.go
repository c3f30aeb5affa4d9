package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/raffle-tickets/internal/inventory"
	"github.com/iliyamo/raffle-tickets/internal/model"
)

// ANSI palette indexes, readable on light and dark terminals.
var statusColors = map[model.TicketStatus]lipgloss.Color{
	model.StatusAvailable: lipgloss.Color("2"),
	model.StatusReserved:  lipgloss.Color("3"),
	model.StatusSold:      lipgloss.Color("1"),
}

const statusColumnWidth = 10

// renderPage prints the visible page of st as a table followed by the
// paging line and the per-status counts.  Styles are bound to w, so
// output that is not a terminal carries no escape codes.
func renderPage(w io.Writer, st inventory.State) {
	r := lipgloss.NewRenderer(w)
	if st.Raffle != nil {
		fmt.Fprintf(w, "%s  %s\n",
			r.NewStyle().Bold(true).Render(st.Raffle.Name),
			r.NewStyle().Faint(true).Render(st.Raffle.Prize))
	}

	visible := st.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(w, r.NewStyle().Faint(true).Render("no tickets on this page"))
	}
	numberWidth := model.MinNumberWidth
	if st.Raffle != nil {
		numberWidth = model.NumberWidth(st.Raffle.TotalTickets)
	}
	numberStyle := r.NewStyle().Width(numberWidth + 2)
	for _, t := range visible {
		status := r.NewStyle().Width(statusColumnWidth).Foreground(statusColors[t.Status]).Render(string(t.Status))
		line := numberStyle.Render(t.Number) + status + buyerLabel(t.Buyer)
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	fmt.Fprintf(w, "page %d/%d, %d matching\n", st.CurrentPage, st.TotalPages(), len(st.Filtered()))
	fmt.Fprintln(w, countsLine(st))
}

func buyerLabel(b *model.BuyerInfo) string {
	if b == nil || b.IsZero() {
		return ""
	}
	parts := []string{b.Name}
	if b.Email != "" {
		parts = append(parts, "<"+b.Email+">")
	}
	if b.TransactionID != "" {
		parts = append(parts, "txn "+b.TransactionID)
	}
	return strings.Join(parts, " ")
}

// countsLine is the one-line per-status tally of the loaded tickets.
func countsLine(st inventory.State) string {
	c := st.Counts()
	return fmt.Sprintf("available %d  reserved %d  sold %d", c.Available, c.Reserved, c.Sold)
}

func renderSummary(w io.Writer, rf model.Raffle, sum model.Summary) {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Width(statusColumnWidth + 1)
	fmt.Fprintf(w, "%s (%s)\n", r.NewStyle().Bold(true).Render(rf.Name), rf.ID)
	rows := []struct {
		status model.TicketStatus
		n      int
	}{
		{model.StatusAvailable, sum.Available},
		{model.StatusReserved, sum.Reserved},
		{model.StatusSold, sum.Sold},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s%d\n", label.Foreground(statusColors[row.status]).Render(string(row.status)), row.n)
	}
	fmt.Fprintf(w, "%s%d of %d\n", label.Render("total"), sum.Total(), rf.TotalTickets)
}

// lineWriter serializes timestamped lines from the refresh goroutine and
// the caller.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) printf(format string, args ...any) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	fmt.Fprintf(lw.w, "%s  %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}
