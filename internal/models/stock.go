package models

// Stock is a monitored watch target. Rows are created by the collector's
// watchlist feed; the dashboard side never mutates them.
type Stock struct {
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	AddedAt EventTime `json:"added_at"`
}
