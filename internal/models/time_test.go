package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTimeWireFormat(t *testing.T) {
	et := NewEventTime(time.Date(2026, 8, 30, 14, 0, 3, 0, time.UTC))

	body, err := json.Marshal(et)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-30 14:00:03"`, string(body))

	var parsed EventTime
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.True(t, parsed.Equal(et.Time))
}

func TestEventTimeAcceptsRFC3339(t *testing.T) {
	var et EventTime
	require.NoError(t, json.Unmarshal([]byte(`"2026-08-30T14:00:03Z"`), &et))
	assert.Equal(t, 14, et.Hour())
}

func TestParseEventTimeMalformed(t *testing.T) {
	_, err := ParseEventTime("half past noon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDateAndClock(t *testing.T) {
	et := NewEventTime(time.Date(2026, 8, 30, 14, 0, 3, 0, time.UTC))
	date, clock := et.DateAndClock()
	assert.Equal(t, "2026-08-30", date)
	assert.Equal(t, "14:00:03", clock)
}

func TestEventTimeScan(t *testing.T) {
	var et EventTime
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	require.NoError(t, et.Scan(now))
	assert.Equal(t, now, et.Time)

	require.NoError(t, et.Scan([]byte("2026-08-30 10:00:00")))
	assert.Equal(t, 10, et.Hour())

	assert.Error(t, et.Scan(12345))
}

func TestNullEventTime(t *testing.T) {
	var n NullEventTime
	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)

	require.NoError(t, n.Scan(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)))
	assert.True(t, n.Valid)

	v, err := n.Value()
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)
}

func TestSignalJSONShape(t *testing.T) {
	body := []byte(`{"id":4,"stock_code":"000001","timeframe":"5m","signal_type":"卖出顶部","price":11.2,"timestamp":"2026-08-30 14:00:03","name":"平安银行"}`)

	var sig SignalWithName
	require.NoError(t, json.Unmarshal(body, &sig))
	assert.Equal(t, int64(4), sig.ID)
	assert.Equal(t, "平安银行", sig.Name)
	assert.Equal(t, "11.2", sig.Price.String())
	assert.Nil(t, sig.BarTime)
}
