package kafka

import (
	"encoding/json"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantwatch/signalboard/internal/models"
)

// ---------------------------------------------------------------------------
// Mock SignalRepository
// ---------------------------------------------------------------------------

type mockSignalRepo struct {
	mu       sync.Mutex
	inserted []*models.Signal
	existing map[string]bool
	err      error
}

func (m *mockSignalRepo) InsertSignal(sig *models.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	sig.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, sig)
	return nil
}

func (m *mockSignalRepo) SignalExists(stockCode, timeframe, signalType string, barTime models.EventTime) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existing[stockCode+"|"+timeframe+"|"+signalType], nil
}

func (m *mockSignalRepo) Inserted() []*models.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]*models.Signal, len(m.inserted))
	copy(cp, m.inserted)
	return cp
}

func signalMessage(t *testing.T, data SignalEventData) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(SignalEvent{
		EventType: "SIGNAL_DETECTED",
		Source:    "qmt-collector",
		Data:      data,
	})
	require.NoError(t, err)
	return kafkago.Message{Value: payload}
}

// ---------------------------------------------------------------------------
// processMessage tests
// ---------------------------------------------------------------------------

func TestSignalConsumer_processMessage_InsertsSignal(t *testing.T) {
	repo := &mockSignalRepo{}
	consumer := &SignalConsumer{repo: repo}

	msg := signalMessage(t, SignalEventData{
		StockCode:  "600519",
		Timeframe:  "5m",
		SignalType: "低位托盘买入",
		Price:      "1700.50",
		BarTime:    "2026-08-30 14:00:00",
	})
	require.NoError(t, consumer.processMessage(msg))

	inserted := repo.Inserted()
	require.Len(t, inserted, 1)
	assert.Equal(t, "600519", inserted[0].StockCode)
	assert.Equal(t, "低位托盘买入", inserted[0].SignalType)
	assert.Equal(t, "1700.5", inserted[0].Price.String())
	require.NotNil(t, inserted[0].BarTime)
}

func TestSignalConsumer_processMessage_SkipsDuplicateCandle(t *testing.T) {
	repo := &mockSignalRepo{existing: map[string]bool{"600519|5m|低位托盘买入": true}}
	consumer := &SignalConsumer{repo: repo}

	msg := signalMessage(t, SignalEventData{
		StockCode:  "600519",
		Timeframe:  "5m",
		SignalType: "低位托盘买入",
		Price:      "1700.50",
		BarTime:    "2026-08-30 14:00:00",
	})
	require.NoError(t, consumer.processMessage(msg))
	assert.Empty(t, repo.Inserted())
}

func TestSignalConsumer_processMessage_RejectsBadPrice(t *testing.T) {
	repo := &mockSignalRepo{}
	consumer := &SignalConsumer{repo: repo}

	msg := signalMessage(t, SignalEventData{
		StockCode:  "600519",
		SignalType: "MACD BUY",
		Price:      "not-a-number",
	})
	err := consumer.processMessage(msg)
	require.Error(t, err)
	assert.Empty(t, repo.Inserted())
}

func TestSignalConsumer_processMessage_ToleratesBadBarTime(t *testing.T) {
	repo := &mockSignalRepo{}
	consumer := &SignalConsumer{repo: repo}

	msg := signalMessage(t, SignalEventData{
		StockCode:  "600519",
		SignalType: "MACD BUY",
		Price:      "12.00",
		BarTime:    "yesterday-ish",
	})
	require.NoError(t, consumer.processMessage(msg))

	inserted := repo.Inserted()
	require.Len(t, inserted, 1)
	assert.Nil(t, inserted[0].BarTime)
}

func TestSignalConsumer_processMessage_IgnoresUnknownEventType(t *testing.T) {
	repo := &mockSignalRepo{}
	consumer := &SignalConsumer{repo: repo}

	payload, err := json.Marshal(SignalEvent{EventType: "HEARTBEAT"})
	require.NoError(t, err)
	require.NoError(t, consumer.processMessage(kafkago.Message{Value: payload}))
	assert.Empty(t, repo.Inserted())
}

func TestSignalConsumer_processMessage_MalformedJSON(t *testing.T) {
	consumer := &SignalConsumer{repo: &mockSignalRepo{}}
	err := consumer.processMessage(kafkago.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Watchlist consumer
// ---------------------------------------------------------------------------

type mockStockRepo struct {
	mu      sync.Mutex
	upserts map[string]string
}

func (m *mockStockRepo) UpsertStock(code, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upserts == nil {
		m.upserts = map[string]string{}
	}
	m.upserts[code] = name
	return nil
}

func (m *mockStockRepo) StockExists(code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.upserts[code]
	return ok, nil
}

func TestWatchlistConsumer_processMessage_StockAdded(t *testing.T) {
	repo := &mockStockRepo{}
	consumer := &WatchlistConsumer{repo: repo}

	payload, err := json.Marshal(WatchlistEvent{
		EventType: "WATCHLIST_STOCK_ADDED",
		Data:      WatchlistEventData{Code: "600519", Name: "贵州茅台"},
	})
	require.NoError(t, err)
	require.NoError(t, consumer.processMessage(kafkago.Message{Value: payload}))

	assert.Equal(t, "贵州茅台", repo.upserts["600519"])
}

func TestWatchlistConsumer_processMessage_UpdatedBatch(t *testing.T) {
	repo := &mockStockRepo{}
	consumer := &WatchlistConsumer{repo: repo}

	payload, err := json.Marshal(WatchlistEvent{
		EventType: "WATCHLIST_UPDATED",
		Data: WatchlistEventData{
			AddedCodes: []string{"600519", "000001"},
			TotalCount: 2,
			Stocks: []WatchlistStock{
				{Code: "600519", Name: "贵州茅台"},
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, consumer.processMessage(kafkago.Message{Value: payload}))

	assert.Equal(t, "贵州茅台", repo.upserts["600519"])
	// no name in the event falls back to the code
	assert.Equal(t, "000001", repo.upserts["000001"])
}

func TestWatchlistConsumer_processMessage_RemovalKeepsStock(t *testing.T) {
	repo := &mockStockRepo{upserts: map[string]string{"600519": "贵州茅台"}}
	consumer := &WatchlistConsumer{repo: repo}

	payload, err := json.Marshal(WatchlistEvent{
		EventType: "WATCHLIST_STOCK_REMOVED",
		Data:      WatchlistEventData{Code: "600519"},
	})
	require.NoError(t, err)
	require.NoError(t, consumer.processMessage(kafkago.Message{Value: payload}))

	assert.Equal(t, "贵州茅台", repo.upserts["600519"])
}
