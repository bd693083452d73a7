package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// StockRepository defines the watchlist operations the consumer needs
type StockRepository interface {
	UpsertStock(code, name string) error
	StockExists(code string) (bool, error)
}

// WatchlistEvent represents a watchlist event from the collector
type WatchlistEvent struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source"`
	Timestamp string             `json:"timestamp"`
	Data      WatchlistEventData `json:"data"`
}

// WatchlistEventData holds the data for different watchlist event types
type WatchlistEventData struct {
	// For WATCHLIST_UPDATED events
	AddedCodes []string         `json:"added_codes,omitempty"`
	TotalCount int              `json:"total_count,omitempty"`
	Stocks     []WatchlistStock `json:"stocks,omitempty"`

	// For WATCHLIST_STOCK_ADDED events
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// WatchlistStock represents stock details in the event
type WatchlistStock struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	AddedAt string `json:"added_at"`
}

// WatchlistConsumer keeps monitored_stocks in step with the collector's
// watchlist. Removals are deliberately ignored: old signals still join
// against the stock row for display.
type WatchlistConsumer struct {
	reader *kafka.Reader
	repo   StockRepository
}

// NewWatchlistConsumer creates a new Kafka consumer for watchlist events
func NewWatchlistConsumer(brokers []string, topic, groupID string, repo StockRepository) *WatchlistConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-watchlist",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &WatchlistConsumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *WatchlistConsumer) Start(ctx context.Context) error {
	log.Printf("Starting watchlist consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Watchlist consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading watchlist message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing watchlist message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *WatchlistConsumer) processMessage(msg kafka.Message) error {
	var event WatchlistEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal watchlist event: %w", err)
	}

	switch event.EventType {
	case "WATCHLIST_UPDATED":
		return c.handleWatchlistUpdated(event)

	case "WATCHLIST_STOCK_ADDED":
		return c.handleStockAdded(event)

	case "WATCHLIST_STOCK_REMOVED":
		log.Printf("Stock removed from watchlist: %s (keeping in database)",
			event.Data.Code)
		return nil

	default:
		log.Printf("Ignoring unknown watchlist event type: %s", event.EventType)
		return nil
	}
}

// handleWatchlistUpdated processes a full watchlist update event
func (c *WatchlistConsumer) handleWatchlistUpdated(event WatchlistEvent) error {
	log.Printf("Processing watchlist update: %d added, %d total",
		len(event.Data.AddedCodes), event.Data.TotalCount)

	for _, code := range event.Data.AddedCodes {
		name := code

		// Find name from stocks list
		for _, stock := range event.Data.Stocks {
			if stock.Code == code {
				name = stock.Name
				break
			}
		}

		if err := c.repo.UpsertStock(code, name); err != nil {
			log.Printf("Error upserting stock %s: %v", code, err)
			continue
		}
		log.Printf("Added/updated stock: %s (%s)", code, name)
	}

	return nil
}

// handleStockAdded processes a single stock added event
func (c *WatchlistConsumer) handleStockAdded(event WatchlistEvent) error {
	code := event.Data.Code
	if code == "" {
		return fmt.Errorf("watchlist event missing code")
	}
	name := event.Data.Name
	if name == "" {
		name = code
	}

	if err := c.repo.UpsertStock(code, name); err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", code, err)
	}

	log.Printf("Added/updated stock from watchlist: %s (%s)", code, name)
	return nil
}

// Close closes the Kafka consumer
func (c *WatchlistConsumer) Close() error {
	return c.reader.Close()
}
