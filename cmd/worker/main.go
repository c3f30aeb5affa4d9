package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/logger"

	"github.com/iliyamo/raffle-tickets/internal/config"
	"github.com/iliyamo/raffle-tickets/internal/queue"
)

// The worker consumes tickets.sold events and appends each to
// $LOG_DIR/sales.log until interrupted.
func main() {
	defer logger.Init("raffle-worker", true, false, io.Discard).Close()

	cfg := config.LoadWorker()
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		logger.Fatalf("log dir: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("consuming %s, writing %s/%s", queue.TicketsSoldQueue, cfg.LogDir, queue.SalesLogFile)
	if err := queue.StartSalesConsumer(ctx, cfg.AMQPURL, cfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}
}
