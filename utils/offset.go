package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidReminderOffset flags a "<n> <unit> before" reminder spec that
// cannot be honored (negative n, unknown unit, wrong shape).
var ErrInvalidReminderOffset = errors.New("invalid reminder offset")

// Fixed second counts per unit. Months and years are deliberately
// non-calendar-aware (30 and 364 days).
var offsetUnits = map[string]int64{
	"seconds": 1,
	"minutes": 60,
	"hours":   3600,
	"days":    86400,
	"weeks":   86400 * 7,
	"months":  2592000,
	"years":   31449600,
}

// ParseReminderOffset parses a spec of the form "15 minutes before" and
// returns the offset to subtract from an event's anchor time.
func ParseReminderOffset(spec string) (time.Duration, error) {
	body, ok := strings.CutSuffix(strings.TrimSpace(spec), "before")
	if !ok {
		return 0, fmt.Errorf("%w: %q does not end in \"before\"", ErrInvalidReminderOffset, spec)
	}
	amount, unit, ok := strings.Cut(strings.TrimSpace(body), " ")
	if !ok {
		return 0, fmt.Errorf("%w: must specify n timeunits before", ErrInvalidReminderOffset)
	}
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidReminderOffset, amount)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: time must be positive", ErrInvalidReminderOffset)
	}
	secs, ok := offsetUnits[strings.TrimSpace(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidReminderOffset, unit)
	}
	return time.Duration(n*secs) * time.Second, nil
}
