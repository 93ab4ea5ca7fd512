// services/recurrence.go
package services

import (
	"fmt"
	"time"

	"remindly-backend/models"
	"remindly-backend/utils"
)

// Clock abstracts time.Now so recurrence math and the due-window check can
// be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}

// IsDue reports whether trigger falls inside the forward-looking one-minute
// admission window [now, now+60s). A trigger already in the past is simply
// not due; in the normal case it was deleted or superseded when it fired.
func IsDue(trigger, now time.Time) bool {
	return !trigger.Before(now) && trigger.Before(now.Add(time.Minute))
}

// NextOccurrence computes the trigger instant for the next occurrence of a
// recurring event. anchor is the event's stored time and carries the
// template components: time-of-day for daily, weekday+time for weekly,
// day-of-month for monthly, month+day for yearly. current is "now".
//
// The daily rule returns the most recent past-or-present instant matching
// the anchor's time-of-day; a caller that needs a strictly future instant
// adds a day when the result is not after current.
func NextOccurrence(period models.RecurrencePeriod, anchor, current time.Time) (time.Time, error) {
	switch period {
	case models.RecurDaily:
		return nextDaily(anchor, current), nil
	case models.RecurWeekly:
		return nextWeekly(anchor, current), nil
	case models.RecurMonthly:
		return nextMonthly(anchor, current)
	case models.RecurYearly:
		return nextYearly(anchor, current)
	}
	return time.Time{}, fmt.Errorf("%w: period code %d", models.ErrInvalidRecurrenceState, int16(period))
}

func nextDaily(anchor, current time.Time) time.Time {
	diff := utils.SecondsFromMidnight(current) - utils.SecondsFromMidnight(anchor)
	if diff >= 0 {
		return current.Add(-time.Duration(diff) * time.Second)
	}
	return current.Add(-time.Duration(diff+86400) * time.Second)
}

func nextWeekly(anchor, current time.Time) time.Time {
	diff := utils.DaysFromSunday(current) - utils.DaysFromSunday(anchor)
	base := current
	if !(diff == 0 && utils.SecondsFromMidnight(anchor) > utils.SecondsFromMidnight(current)) {
		base = current.AddDate(0, 0, -int(diff+7))
	}
	return utils.WithClock(base, anchor.Hour(), anchor.Minute(), anchor.Second())
}

func nextMonthly(anchor, current time.Time) (time.Time, error) {
	// month0/day0 are zero-indexed, matching the comparison the rule is
	// defined in terms of.
	diff := int(current.Month()) - int(anchor.Month())
	targetMonth0 := int(current.Month()) - 1
	if !(diff == 0 && anchor.Day() >= current.Day() || diff < 0) {
		targetMonth0++
	}
	if targetMonth0 > 11 {
		return time.Time{}, fmt.Errorf("%w: month index %d out of range", ErrInvalidDate, targetMonth0)
	}
	return buildDate(current.Year(), time.Month(targetMonth0+1), anchor.Day(), anchor)
}

func nextYearly(anchor, current time.Time) (time.Time, error) {
	diff := int(current.Month()) - int(anchor.Month())
	targetYear := current.Year()
	if diff > 0 || (diff == 0 && anchor.Day() <= current.Day()) {
		targetYear++
	}
	return buildDate(targetYear, anchor.Month(), anchor.Day(), anchor)
}

// buildDate assembles a date and rejects it if the day does not exist in
// the target month. time.Date silently normalizes (Feb 30 becomes Mar 2),
// so the check is construct-and-verify.
func buildDate(year int, month time.Month, day int, clock time.Time) (time.Time, error) {
	t := time.Date(year, month, day,
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), clock.Location())
	if t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d does not exist", ErrInvalidDate, year, int(month), day)
	}
	return t, nil
}
