// Package watch implements the dashboard's reconciliation loop: bootstrap a
// snapshot, then poll the delta endpoint on a guarded timer and deliver each
// new signal exactly once, in id order.
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/quantwatch/signalboard/internal/classify"
	"github.com/quantwatch/signalboard/internal/models"
)

// QueryService provides the three read operations the loop consumes. It is
// satisfied by client.Client over HTTP and by fakes in tests.
type QueryService interface {
	ListStocks(ctx context.Context) ([]*models.Stock, error)
	RecentSignals(ctx context.Context) ([]*models.SignalWithName, error)
	SignalsSince(ctx context.Context, lastID int64) ([]*models.SignalWithName, error)
}

// Alert is one classified signal ready for presentation.
type Alert struct {
	Signal    models.SignalWithName
	Direction classify.Direction
}

// Sink receives the bootstrap snapshot and subsequent alerts. Alerts arrive
// in ascending id order; a display should prepend so the newest sits on top.
type Sink interface {
	RenderSnapshot(stocks []*models.Stock, signals []*models.SignalWithName)
	Alert(alert Alert)
}

// Config holds watcher configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 3s)
}

// DefaultConfig returns the reference dashboard's cadence.
func DefaultConfig() Config {
	return Config{Interval: 3 * time.Second}
}

// Watcher drives the poll/reconcile loop. The cursor and all sink calls are
// owned by the single run goroutine; nothing here is shared across threads.
type Watcher struct {
	cfg     Config
	service QueryService
	sink    Sink

	cursor       int64
	bootstrapped bool
	syncing      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher.
func New(cfg Config, service QueryService, sink Sink) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Watcher{
		cfg:     cfg,
		service: service,
		sink:    sink,
	}
}

// Start begins the reconciliation loop.
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	log.Printf("Watcher started (interval: %s)", w.cfg.Interval)
}

// Stop shuts the loop down and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	log.Println("Watcher stopped")
}

type syncResult struct {
	signals []*models.SignalWithName
	err     error
}

// run owns the cursor. Sync requests execute off-loop so a slow response
// never blocks shutdown, but at most one is outstanding and its result is
// applied on this goroutine, so responses land in issue order by
// construction.
func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	results := make(chan syncResult, 1)

	// First cycle immediately, as the reference page does on load.
	w.tick(results)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.tick(results)
		case res := <-results:
			w.syncing = false
			w.reconcile(res)
		}
	}
}

// tick runs one scheduled cycle: bootstrap until it succeeds, then issue a
// delta request unless one is already in flight.
func (w *Watcher) tick(results chan<- syncResult) {
	if !w.bootstrapped {
		if err := w.bootstrap(); err != nil {
			log.Printf("Bootstrap failed, will retry: %v", err)
		}
		return
	}

	if w.syncing {
		// In-flight guard: overlapping polls would allow out-of-order
		// cursor updates and duplicate alerts.
		log.Println("Previous sync still in flight, skipping tick")
		return
	}

	w.syncing = true
	cursor := w.cursor
	go func() {
		signals, err := w.service.SignalsSince(w.ctx, cursor)
		select {
		case results <- syncResult{signals: signals, err: err}:
		case <-w.ctx.Done():
		}
	}()
}

// bootstrap loads the full snapshot and seeds the cursor with the highest
// signal id observed. Runs once per session; a restart repeats it, which is
// how re-delivery after restart stays tolerable (full reload semantics).
func (w *Watcher) bootstrap() error {
	stocks, err := w.service.ListStocks(w.ctx)
	if err != nil {
		return err
	}

	signals, err := w.service.RecentSignals(w.ctx)
	if err != nil {
		return err
	}

	var maxID int64
	for _, sig := range signals {
		if sig.ID > maxID {
			maxID = sig.ID
		}
	}

	w.sink.RenderSnapshot(stocks, signals)
	w.cursor = maxID
	w.bootstrapped = true

	log.Printf("Bootstrap complete: %d stocks, %d signals, cursor=%d",
		len(stocks), len(signals), maxID)
	return nil
}

// reconcile applies one delta response: classify and deliver each signal in
// ascending id order, then advance the cursor once for the whole batch. A
// failed response leaves the cursor untouched so the next poll re-requests
// the same window.
func (w *Watcher) reconcile(res syncResult) {
	if res.err != nil {
		log.Printf("Sync failed, keeping cursor at %d: %v", w.cursor, res.err)
		return
	}

	maxID := w.cursor
	for _, sig := range res.signals {
		if sig.ID <= w.cursor {
			// The service contract excludes this; drop rather than re-alert.
			continue
		}
		w.sink.Alert(Alert{
			Signal:    *sig,
			Direction: classify.Classify(sig.SignalType),
		})
		if sig.ID > maxID {
			maxID = sig.ID
		}
	}

	if maxID > w.cursor {
		w.cursor = maxID
		log.Printf("Delivered %d signals, cursor=%d", len(res.signals), w.cursor)
	}
}
