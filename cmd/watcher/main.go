// The watcher is the remote dashboard: it bootstraps a snapshot from the
// signalboard server, then polls for deltas and prints classified alerts.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantwatch/signalboard/internal/client"
	"github.com/quantwatch/signalboard/internal/config"
	"github.com/quantwatch/signalboard/internal/watch"
)

func main() {
	cfg := config.LoadWatcher()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	svc := client.New(cfg.ServerURL, cfg.RequestTimeout)

	watcher := watch.New(
		watch.Config{Interval: cfg.PollInterval},
		svc,
		watch.NewLogSink(os.Stdout),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher.Start(ctx)
	log.Printf("Watching %s every %s", cfg.ServerURL, cfg.PollInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	watcher.Stop()
}
