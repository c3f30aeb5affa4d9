package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/raffle-tickets/internal/inventory"
	"github.com/iliyamo/raffle-tickets/internal/model"
)

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(out)
	return flagSet
}

// parse parses args and splits the positionals into the raffle id and the
// remaining ticket numbers.
func parse(flagSet *pflag.FlagSet, args []string) (string, []string, error) {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return "", nil, err
		}
		return "", nil, errUsage
	}
	pos := flagSet.Args()
	if len(pos) == 0 {
		fmt.Fprintf(flagSet.Output(), "%s: missing raffle id\n", flagSet.Name())
		return "", nil, errUsage
	}
	return pos[0], pos[1:], nil
}

// load opens a manager on the raffle.  The caller closes it.
func (a *app) load(ctx context.Context, raffleID string, pageSize int) (*inventory.Manager, error) {
	m := inventory.NewManager(a.remote, inventory.WithPageSize(pageSize))
	if err := m.Load(ctx, raffleID); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	flagSet := newFlagSet("list", a.out)
	status := flagSet.String("status", string(inventory.FilterAll), "all, available, reserved or sold")
	query := flagSet.StringP("query", "q", "", "match ticket number or buyer name, email, phone, transaction id")
	page := flagSet.Int("page", 1, "page to show")
	pageSize := flagSet.Int("page-size", a.pageSize, "tickets per page")
	raffleID, _, err := parse(flagSet, args)
	if err != nil {
		return err
	}
	filter, err := inventory.ParseStatusFilter(*status)
	if err != nil {
		return err
	}

	m, err := a.load(ctx, raffleID, *pageSize)
	if err != nil {
		return err
	}
	defer m.Close()
	store := m.Store()
	store.SetFilter(filter, *query)
	store.Paginate(*page)
	renderPage(a.out, store.State())
	return nil
}

func runSummary(ctx context.Context, a *app, args []string) error {
	raffleID, _, err := parse(newFlagSet("summary", a.out), args)
	if err != nil {
		return err
	}
	m, err := a.load(ctx, raffleID, a.pageSize)
	if err != nil {
		return err
	}
	defer m.Close()
	sum, err := m.Summary(ctx)
	if err != nil {
		return err
	}
	renderSummary(a.out, *m.Store().State().Raffle, sum)
	return nil
}

func runInit(ctx context.Context, a *app, args []string) error {
	raffleID, _, err := parse(newFlagSet("init", a.out), args)
	if err != nil {
		return err
	}
	n, err := a.remote.InitTickets(ctx, raffleID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %d tickets for raffle %s\n", n, raffleID)
	return nil
}

// runSetStatus moves the listed tickets, or when none are listed the
// whole --page of the filtered view, to --status.
func runSetStatus(ctx context.Context, a *app, args []string) error {
	flagSet := newFlagSet("set-status", a.out)
	status := flagSet.String("status", "", "target status: available or reserved (sell with the sell command)")
	page := flagSet.Int("page", 0, "apply to every ticket on this page when no numbers are given")
	filterStatus := flagSet.String("filter", string(inventory.FilterAll), "status filter used with --page")
	query := flagSet.StringP("query", "q", "", "search used with --page")
	pageSize := flagSet.Int("page-size", a.pageSize, "tickets per page used with --page")
	raffleID, numbers, err := parse(flagSet, args)
	if err != nil {
		return err
	}
	target, err := model.ParseStatus(*status)
	if err != nil {
		return err
	}
	if len(numbers) == 0 && *page < 1 {
		fmt.Fprintln(a.out, "set-status: give ticket numbers or --page")
		return errUsage
	}

	m, err := a.load(ctx, raffleID, *pageSize)
	if err != nil {
		return err
	}
	defer m.Close()

	var n int
	if len(numbers) > 0 {
		n, err = m.ApplyStatusTo(ctx, numbers, target)
	} else {
		filter, ferr := inventory.ParseStatusFilter(*filterStatus)
		if ferr != nil {
			return ferr
		}
		store := m.Store()
		store.SetFilter(filter, *query)
		store.Paginate(*page)
		store.SelectAll(true)
		n, err = m.ApplyStatus(ctx, target)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d tickets changed to %s\n", n, target)
	return nil
}

func runSell(ctx context.Context, a *app, args []string) error {
	flagSet := newFlagSet("sell", a.out)
	var buyer model.BuyerInfo
	flagSet.StringVar(&buyer.Name, "name", "", "buyer name (required)")
	flagSet.StringVar(&buyer.Email, "email", "", "buyer email")
	flagSet.StringVar(&buyer.Phone, "phone", "", "buyer phone")
	flagSet.StringVar(&buyer.TransactionID, "txn", "", "payment transaction id")
	raffleID, numbers, err := parse(flagSet, args)
	if err != nil {
		return err
	}

	m, err := a.load(ctx, raffleID, a.pageSize)
	if err != nil {
		return err
	}
	defer m.Close()
	store := m.Store()
	for _, n := range numbers {
		if !store.State().Selection.Has(n) {
			store.Toggle(n)
		}
	}
	store.OpenSale()
	store.EditBuyer(buyer)
	n, err := m.FinalizeDraft(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "sold %d tickets to %s\n", n, buyer.Name)
	return nil
}

// runWatch reloads the raffle every --interval and prints the counts after
// each successful refresh until interrupted.
func runWatch(ctx context.Context, a *app, args []string) error {
	flagSet := newFlagSet("watch", a.out)
	interval := flagSet.Duration("interval", 30*time.Second, "time between refreshes")
	raffleID, _, err := parse(flagSet, args)
	if err != nil {
		return err
	}
	m, err := a.load(ctx, raffleID, a.pageSize)
	if err != nil {
		return err
	}
	defer m.Close()

	lw := &lineWriter{w: a.out}
	lw.printf("%s", countsLine(m.Store().State()))
	unsubscribe := m.Store().Subscribe(func(st inventory.State) {
		if st.Loading || st.Err != "" || st.Raffle == nil {
			return
		}
		lw.printf("%s", countsLine(st))
	})
	defer unsubscribe()

	h := m.StartRefresh(*interval, func(err error) { lw.printf("refresh failed: %v", err) })
	<-ctx.Done()
	h.Stop()
	return nil
}
