package util

import (
	"fmt"
	"time"
)

// Accepted due_date layouts, tried in order. Zone-less values are common from
// clients that serialize local datetimes, so RFC 3339 is not required.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses an ISO-8601 datetime, with or without a zone offset.
// Zone-less values are interpreted as UTC.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid datetime %q, expected ISO-8601", value)
}
