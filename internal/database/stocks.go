package database

import (
	"fmt"

	"github.com/quantwatch/signalboard/internal/models"
)

// ListStocks returns the full watchlist, newest additions first. Watchlists
// are small; no pagination.
func (db *DB) ListStocks() ([]*models.Stock, error) {
	query := `
		SELECT code, name, added_at
		FROM monitored_stocks
		ORDER BY added_at DESC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list stocks: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		var stock models.Stock
		if err := rows.Scan(&stock.Code, &stock.Name, &stock.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, &stock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list stocks: %v", ErrStoreUnavailable, err)
	}

	return stocks, nil
}

// UpsertStock inserts or updates a watch target. Used only by the ingest
// consumers; the query surface never writes.
func (db *DB) UpsertStock(code, name string) error {
	query := `
		INSERT INTO monitored_stocks (code, name, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (code) DO UPDATE SET
			name = CASE WHEN monitored_stocks.name = '' THEN EXCLUDED.name ELSE monitored_stocks.name END
	`

	if _, err := db.conn.Exec(query, code, name); err != nil {
		return fmt.Errorf("%w: failed to upsert stock %s: %v", ErrStoreUnavailable, code, err)
	}
	return nil
}

// StockExists checks if a watch target exists
func (db *DB) StockExists(code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM monitored_stocks WHERE code = $1)`
	var exists bool
	if err := db.conn.QueryRow(query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: failed to check stock existence: %v", ErrStoreUnavailable, err)
	}
	return exists, nil
}
