package watch

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quantwatch/signalboard/internal/classify"
	"github.com/quantwatch/signalboard/internal/models"
)

func TestLogSinkRendersSnapshotAndAlerts(t *testing.T) {
	var buf strings.Builder
	sink := NewLogSink(&buf)

	stocks := []*models.Stock{
		{Code: "600519", Name: "贵州茅台", AddedAt: models.NewEventTime(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))},
	}
	signals := []*models.SignalWithName{
		{
			Signal: models.Signal{
				ID: 1, StockCode: "600519", Timeframe: "5m", SignalType: "MACD BUY",
				Price:     decimal.RequireFromString("1700.50"),
				Timestamp: models.NewEventTime(time.Date(2026, 8, 30, 14, 0, 3, 0, time.UTC)),
			},
			Name: "贵州茅台",
		},
	}
	sink.RenderSnapshot(stocks, signals)

	out := buf.String()
	assert.Contains(t, out, "Watchlist (1)")
	assert.Contains(t, out, "贵州茅台 (600519)")
	assert.Contains(t, out, "2026-08-30 14:00:03")
	assert.Contains(t, out, "MACD BUY")

	sink.Alert(Alert{Signal: *signals[0], Direction: classify.Bullish})
	assert.Contains(t, buf.String(), "[bullish]")
}

func TestLogSinkFallsBackToCodeWhenNameMissing(t *testing.T) {
	var buf strings.Builder
	sink := NewLogSink(&buf)

	sink.Alert(Alert{
		Signal: models.SignalWithName{
			Signal: models.Signal{
				ID: 2, StockCode: "000001", SignalType: "卖出顶部",
				Price:     decimal.RequireFromString("11.20"),
				Timestamp: models.NewEventTime(time.Date(2026, 8, 30, 14, 0, 6, 0, time.UTC)),
			},
		},
		Direction: classify.Bearish,
	})

	assert.Contains(t, buf.String(), "000001 (000001)")
	assert.Contains(t, buf.String(), "[bearish]")
}
