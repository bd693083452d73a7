package models

import (
	"github.com/shopspring/decimal"
)

// Signal is one row of the append-only signal log. The id is assigned by the
// store at insert time and is strictly increasing with insertion order; the
// sync protocol depends on that and nothing here may renumber or reorder rows.
type Signal struct {
	ID         int64           `json:"id"`
	StockCode  string          `json:"stock_code"`
	Timeframe  string          `json:"timeframe"`
	SignalType string          `json:"signal_type"`
	Price      decimal.Decimal `json:"price"`
	BarTime    *EventTime      `json:"bar_time,omitempty"`
	Timestamp  EventTime       `json:"timestamp"`
}

// SignalWithName is a Signal joined to its watch target for display.
// Name is empty when the stock is no longer on the watchlist.
type SignalWithName struct {
	Signal
	Name string `json:"name"`
}
