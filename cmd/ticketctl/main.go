// ticketctl is the box-office command line for the raffle ticket service.
//
//	ticketctl [--url URL] [--token TOKEN] <command> [flags] <raffle-id> [ticket numbers...]
//
// Reads need no credentials.  Writes need an admin token, taken from
// --token, TICKETS_API_TOKEN, or minted from JWT_SECRET when only the
// shared secret is configured.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/logger"
	"github.com/spf13/pflag"

	"github.com/iliyamo/raffle-tickets/internal/client"
	"github.com/iliyamo/raffle-tickets/internal/config"
	"github.com/iliyamo/raffle-tickets/internal/inventory"
	"github.com/iliyamo/raffle-tickets/internal/utils"
)

// errUsage reports a command line that could not be understood.  The
// usage text has already been printed.
var errUsage = errors.New("usage error")

// remote is what the commands need from the service.
type remote interface {
	inventory.Remote
	InitTickets(ctx context.Context, raffleID string) (int, error)
}

// connectFunc builds the remote for a base URL and bearer token.
type connectFunc func(baseURL, token string) remote

type app struct {
	out      io.Writer
	remote   remote
	pageSize int
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

func commands() []command {
	return []command{
		{"list", "<raffle-id>", "show one page of tickets", runList},
		{"summary", "<raffle-id>", "count tickets per status", runSummary},
		{"init", "<raffle-id>", "create the ticket set of a new raffle", runInit},
		{"set-status", "<raffle-id> [numbers...]", "move tickets to a status", runSetStatus},
		{"sell", "<raffle-id> numbers...", "sell tickets to a buyer", runSell},
		{"watch", "<raffle-id>", "print counts whenever the raffle refreshes", runWatch},
	}
}

func main() {
	defer logger.Init("ticketctl", false, false, io.Discard).Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, func(baseURL, token string) remote {
		return client.New(baseURL, client.WithToken(token))
	})
	stop()
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "ticketctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, out io.Writer, connect connectFunc) error {
	cfg := config.LoadClient()

	flagSet := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(out)
	baseURL := flagSet.String("url", cfg.BaseURL, "service base URL (TICKETS_API_URL)")
	token := flagSet.String("token", cfg.Token, "bearer token for writes (TICKETS_API_TOKEN)")
	flagSet.Usage = func() { printUsage(out, flagSet) }
	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return errUsage
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(out, flagSet)
		return errUsage
	}
	var cmd *command
	for _, c := range commands() {
		if c.name == rest[0] {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(out, "unknown command %q\n\n", rest[0])
		printUsage(out, flagSet)
		return errUsage
	}

	bearer := *token
	if bearer == "" && cfg.JWTSecret != "" {
		at, err := utils.NewAccessToken(cfg.JWTSecret, "ticketctl", cfg.AdminRole, time.Hour)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		bearer = at.Token
	}
	a := &app{out: out, remote: connect(*baseURL, bearer), pageSize: cfg.PageSize}
	return cmd.run(ctx, a, rest[1:])
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: ticketctl [global flags] <command> [flags] <raffle-id> [numbers...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-11s %-26s %s\n", c.name, c.args, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
