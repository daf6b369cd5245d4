package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Range is an inclusive [From, To] time window.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Accepted ISO-8601 forms. Values without a zone are read as UTC.
var rangeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseRange validates the from/to query values. Blank values fall back to
// defaultFrom and now; anything present but unparseable is rejected.
func ParseRange(from, to string, defaultFrom, now time.Time) (Range, error) {
	r := Range{From: defaultFrom, To: now}

	if s := strings.TrimSpace(from); s != "" {
		t, err := parseInstant(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: from %q is not an ISO-8601 date", ErrInvalidRange, from)
		}
		r.From = t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, err := parseInstant(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: to %q is not an ISO-8601 date", ErrInvalidRange, to)
		}
		r.To = t
	}

	if r.From.After(r.To) {
		return Range{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	return r, nil
}

func parseInstant(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range rangeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
