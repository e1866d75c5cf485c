package cli

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTimeFlag parses an absolute time in loc. A bare date means the end of
// that day.
func parseTimeFlag(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		t := d.Add(24*time.Hour - time.Second)
		return &t, nil
	}
	return nil, errors.Errorf("invalid time %q (use RFC3339, 2006-01-02 15:04 or 2006-01-02)", s)
}
