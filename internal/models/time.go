package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedRecord reports a field that does not match the collector's
// expected shape. Callers should degrade gracefully rather than drop the row.
var ErrMalformedRecord = errors.New("malformed record")

// wireTimeLayout is the two-component "date time" format the collector writes
// and the reference display splits on.
const wireTimeLayout = "2006-01-02 15:04:05"

// EventTime is a timestamp in the collector's wire format. It marshals as
// "YYYY-MM-DD HH:MM:SS" and parses that format first, falling back to RFC3339
// for records written by newer collectors.
type EventTime struct {
	time.Time
}

// NewEventTime wraps a time.Time.
func NewEventTime(t time.Time) EventTime {
	return EventTime{Time: t}
}

// MarshalJSON renders the collector wire format.
func (t EventTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(wireTimeLayout) + `"`), nil
}

// UnmarshalJSON accepts the collector wire format or RFC3339.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseEventTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed.Time
	return nil
}

// ParseEventTime parses a timestamp string defensively. A string without the
// expected components yields ErrMalformedRecord.
func ParseEventTime(s string) (EventTime, error) {
	for _, layout := range []string{wireTimeLayout, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return EventTime{Time: parsed}, nil
		}
	}
	return EventTime{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, s)
}

// DateAndClock splits the timestamp into its display components.
func (t EventTime) DateAndClock() (string, string) {
	formatted := t.Format(wireTimeLayout)
	parts := strings.SplitN(formatted, " ", 2)
	if len(parts) != 2 {
		return formatted, ""
	}
	return parts[0], parts[1]
}

// NullEventTime is EventTime with a validity flag for nullable columns.
type NullEventTime struct {
	Time  EventTime
	Valid bool
}

// Scan implements sql.Scanner.
func (n *NullEventTime) Scan(src interface{}) error {
	if src == nil {
		n.Time, n.Valid = EventTime{}, false
		return nil
	}
	if err := n.Time.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements driver.Valuer.
func (n NullEventTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Time, nil
}

// Value implements driver.Valuer so EventTime can be bound directly in queries.
func (t EventTime) Value() (driver.Value, error) {
	return t.Time, nil
}

// Scan implements sql.Scanner for DATETIME/TIMESTAMP columns, tolerating
// drivers that hand back strings or bytes.
func (t *EventTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		parsed, err := ParseEventTime(string(v))
		if err != nil {
			return err
		}
		t.Time = parsed.Time
		return nil
	case string:
		parsed, err := ParseEventTime(v)
		if err != nil {
			return err
		}
		t.Time = parsed.Time
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into EventTime", ErrMalformedRecord, src)
	}
}
