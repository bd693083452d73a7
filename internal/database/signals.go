package database

import (
	"database/sql"
	"fmt"

	"github.com/quantwatch/signalboard/internal/models"
)

const signalCols = `s.id, s.stock_code, s.timeframe, s.signal_type, s.price, s.bar_time, s.timestamp, COALESCE(m.name, '')`

// RecentSignals returns the newest signals joined to their watch targets,
// newest first, bounded to limit. A signal whose stock is no longer monitored
// keeps an empty name.
func (db *DB) RecentSignals(limit int) ([]*models.SignalWithName, error) {
	query := `
		SELECT ` + signalCols + `
		FROM signal_history s
		LEFT JOIN monitored_stocks m ON s.stock_code = m.code
		ORDER BY s.timestamp DESC
		LIMIT $1
	`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list recent signals: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// SignalsSince returns every signal with id > lastID in ascending id order.
// Unbounded: a long-disconnected client gets its full backlog in one call.
// Because ids are assigned at insert and never reordered, splitting a sync
// into smaller steps never loses or duplicates rows as long as the caller
// only advances its cursor to an id it actually received.
func (db *DB) SignalsSince(lastID int64) ([]*models.SignalWithName, error) {
	query := `
		SELECT ` + signalCols + `
		FROM signal_history s
		LEFT JOIN monitored_stocks m ON s.stock_code = m.code
		WHERE s.id > $1
		ORDER BY s.id ASC
	`

	rows, err := db.conn.Query(query, lastID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sync signals after id %d: %v", ErrStoreUnavailable, lastID, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// InsertSignal appends a signal to the log and fills in the assigned id and
// insert timestamp. Used only by the ingest consumers.
func (db *DB) InsertSignal(sig *models.Signal) error {
	query := `
		INSERT INTO signal_history (stock_code, timeframe, signal_type, price, bar_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, timestamp
	`

	err := db.conn.QueryRow(query,
		sig.StockCode, sig.Timeframe, sig.SignalType, sig.Price, sig.BarTime,
	).Scan(&sig.ID, &sig.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: failed to insert signal for %s: %v", ErrStoreUnavailable, sig.StockCode, err)
	}
	return nil
}

// SignalExists reports whether an identical signal is already logged for the
// same candle, so replayed collector messages do not duplicate rows.
func (db *DB) SignalExists(stockCode, timeframe, signalType string, barTime models.EventTime) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM signal_history
			WHERE stock_code = $1 AND timeframe = $2 AND signal_type = $3 AND bar_time = $4
		)
	`
	var exists bool
	if err := db.conn.QueryRow(query, stockCode, timeframe, signalType, barTime).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: failed to check signal existence: %v", ErrStoreUnavailable, err)
	}
	return exists, nil
}

func scanSignals(rows *sql.Rows) ([]*models.SignalWithName, error) {
	var signals []*models.SignalWithName
	for rows.Next() {
		var sig models.SignalWithName
		var barTime models.NullEventTime
		err := rows.Scan(
			&sig.ID, &sig.StockCode, &sig.Timeframe, &sig.SignalType,
			&sig.Price, &barTime, &sig.Timestamp, &sig.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		if barTime.Valid {
			sig.BarTime = &barTime.Time
		}
		signals = append(signals, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read signals: %v", ErrStoreUnavailable, err)
	}
	return signals, nil
}
