package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/quantwatch/signalboard/internal/metrics"
	"github.com/quantwatch/signalboard/internal/models"
)

// SignalRepository defines the append operations the signal consumer needs
type SignalRepository interface {
	InsertSignal(sig *models.Signal) error
	SignalExists(stockCode, timeframe, signalType string, barTime models.EventTime) (bool, error)
}

// SignalEvent represents a detected-signal event from the collector
type SignalEvent struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Data      SignalEventData `json:"data"`
}

// SignalEventData holds the signal fields the collector emits
type SignalEventData struct {
	StockCode  string `json:"stock_code"`
	Timeframe  string `json:"timeframe"`
	SignalType string `json:"signal_type"`
	Price      string `json:"price"`
	BarTime    string `json:"bar_time,omitempty"`
}

// SignalConsumer appends collector signal events to the signal log. It is the
// only writer to signal_history in this process; the query surface never
// writes.
type SignalConsumer struct {
	reader *kafka.Reader
	repo   SignalRepository
}

// NewSignalConsumer creates a new Kafka consumer for collector signal events
func NewSignalConsumer(brokers []string, topic, groupID string, repo SignalRepository) *SignalConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-signals",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &SignalConsumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *SignalConsumer) Start(ctx context.Context) error {
	log.Printf("Starting signal consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Signal consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading signal message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing signal message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *SignalConsumer) processMessage(msg kafka.Message) error {
	var event SignalEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal signal event: %w", err)
	}

	if event.EventType != "SIGNAL_DETECTED" {
		log.Printf("Ignoring unknown signal event type: %s", event.EventType)
		return nil
	}

	sig, err := c.buildSignal(event.Data)
	if err != nil {
		return err
	}

	// Replayed collector messages for the same candle are dropped, not
	// duplicated; the log's ids stay gap-free for consumers either way.
	if sig.BarTime != nil {
		exists, err := c.repo.SignalExists(sig.StockCode, sig.Timeframe, sig.SignalType, *sig.BarTime)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("Skipping duplicate signal: %s %s %s", sig.StockCode, sig.Timeframe, sig.SignalType)
			return nil
		}
	}

	if err := c.repo.InsertSignal(sig); err != nil {
		return err
	}

	metrics.SignalsIngested.Inc()
	log.Printf("Logged signal id=%d %s %s %s @ %s",
		sig.ID, sig.StockCode, sig.Timeframe, sig.SignalType, sig.Price)
	return nil
}

// buildSignal validates and converts the wire payload
func (c *SignalConsumer) buildSignal(data SignalEventData) (*models.Signal, error) {
	if data.StockCode == "" {
		return nil, errors.New("signal event missing stock_code")
	}
	if data.SignalType == "" {
		return nil, fmt.Errorf("signal event for %s missing signal_type", data.StockCode)
	}

	price, err := decimal.NewFromString(data.Price)
	if err != nil {
		return nil, fmt.Errorf("signal event for %s has bad price %q: %w", data.StockCode, data.Price, err)
	}

	sig := &models.Signal{
		StockCode:  data.StockCode,
		Timeframe:  data.Timeframe,
		SignalType: data.SignalType,
		Price:      price,
	}

	if data.BarTime != "" {
		barTime, err := models.ParseEventTime(data.BarTime)
		if err != nil {
			// Tolerated: the row is still worth logging without its candle time.
			log.Printf("Dropping unparseable bar_time for %s: %v", data.StockCode, err)
		} else {
			sig.BarTime = &barTime
		}
	}

	return sig, nil
}

// Close closes the Kafka consumer
func (c *SignalConsumer) Close() error {
	return c.reader.Close()
}
