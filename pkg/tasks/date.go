package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateLayout is the canonical text form of a Date
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a value cannot be read as a calendar date
var ErrInvalidDate = errors.New("invalid date")

// datetimeLayouts are the full timestamps the API may send in place of a
// plain date
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// Date is a calendar date with no time of day and no zone.
// The zero Date is not a valid calendar date; absent dates are nil *Date.
type Date struct {
	d civil.Date
}

// NewDate builds a Date from its parts. Out of range parts are normalized
// the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{d: civil.DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// Today returns the calendar date that now falls on in now's own location.
// This is the only place a clock reading becomes a Date.
func Today(now time.Time) Date {
	return Date{d: civil.DateOf(now)}
}

// ParseDate reads a YYYY-MM-DD date. Datetime strings written by the API
// (ISO 8601 or RFC 1123) are accepted and truncated to the date they spell,
// without any zone conversion.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	if d, err := civil.ParseDate(s); err == nil {
		return Date{d: d}, nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{d: civil.DateOf(t)}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d was never set
func (d Date) IsZero() bool { return d.d == civil.Date{} }

// String returns the canonical YYYY-MM-DD form
func (d Date) String() string { return d.d.String() }

// Time returns midnight UTC of d
func (d Date) Time() time.Time { return d.d.In(time.UTC) }

// AddDays returns the date n calendar days after d
func (d Date) AddDays(n int) Date { return Date{d: d.d.AddDays(n)} }

func (d Date) Equal(o Date) bool  { return d.d == o.d }
func (d Date) Before(o Date) bool { return d.d.Before(o.d) }
func (d Date) After(o Date) bool  { return d.d.After(o.d) }

// Ptr returns a pointer to a copy of d
func (d Date) Ptr() *Date { return &d }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML writes the canonical form
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// sameDate is false when a is absent
func sameDate(a *Date, b Date) bool {
	return a != nil && a.Equal(b)
}
