package service

import (
	"strings"
	"time"

	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// Accepted clock layouts, most specific first. Slot times arrive from
// several upstream feeds that disagree on format.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3 PM",
	"15",
}

// parseClock normalizes a clock string to minutes since midnight.
func parseClock(value string) (int, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(value), " "))
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, normalized)
		if err != nil {
			continue
		}
		return t.Hour()*60 + t.Minute(), nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, "unrecognized time format: "+value)
}

// overlaps reports whether two half-open minute ranges intersect.
// Back-to-back ranges (end1 == start2) do not conflict.
func overlaps(start1, end1, start2, end2 int) bool {
	lo := start1
	if start2 > lo {
		lo = start2
	}
	hi := end1
	if end2 < hi {
		hi = end2
	}
	return lo < hi
}
