/*
interval.go - Half-open date-time ranges for read queries

PURPOSE:
  Every read operation (available supplies, sales-in-range, issues-in-range)
  filters its ledger through the same contract: keep an entity iff its
  relevant timestamp falls in [from, to). Bounds arrive as ISO-8601 strings
  interpreted in UTC; a missing from defaults to the epoch floor.

SEE ALSO:
  - analytics.go: Query operations delegating to this contract
*/
package warehouse

import (
	"fmt"
	"time"
)

// lowestDate is the epoch floor used when a query omits its lower bound.
const lowestDate = "1970-01-01"

// isoLayouts are the accepted ISO-8601 shapes, most specific first.
// Layouts without a zone are interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime interprets an ISO-8601 string in UTC.
func parseTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date-time %q", s)
}

// interval is a half-open time range [from, to).
type interval struct {
	from time.Time
	to   time.Time
}

// parseInterval builds an interval from wire bounds. An empty from defaults
// to the epoch floor; to is required.
func parseInterval(from, to string) (interval, error) {
	if from == "" {
		from = lowestDate
	}
	start, err := parseTime(from)
	if err != nil {
		return interval{}, ErrInvalidDateRange
	}
	end, err := parseTime(to)
	if err != nil {
		return interval{}, ErrInvalidDateRange
	}
	if end.Before(start) {
		return interval{}, fmt.Errorf("%w: end before start", ErrInvalidDateRange)
	}
	return interval{from: start, to: end}, nil
}

// contains reports whether t falls in [from, to).
func (iv interval) contains(t time.Time) bool {
	return !t.Before(iv.from) && t.Before(iv.to)
}
