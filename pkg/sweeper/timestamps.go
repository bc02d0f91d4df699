package sweeper

import (
	"fmt"
	"strings"
	"time"
)

// APITimeFormat is the format the orders API uses for window parameters.
const APITimeFormat = "2006-01-02T15:04:05"

// EpochFloor is the fixed created_at_from bound. The window is only ever
// narrowed from above; every order older than the lookback is a candidate.
const EpochFloor = "1900-01-01T00:00:00"

// createdAtLayouts are tried in order when parsing order timestamps. Stores
// have been seen returning all of these. The zoneless layouts parse as UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseOrderCreatedAt parses an order's created_at value into UTC.
// A trailing "Z" means UTC; a timestamp with no zone at all is taken as UTC.
func ParseOrderCreatedAt(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty created_at")
	}

	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable created_at %q", raw)
}
