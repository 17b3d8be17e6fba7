package respond

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar date in JSON ("2006-01-02"). Full RFC 3339 timestamps
// are accepted on input and truncated to their date.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return nil
}

// DatePtr unwraps an optional request date.
func DatePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}

// Money renders an amount with two decimals, as stored.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
