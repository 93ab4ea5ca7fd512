package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidRecurrenceState flags an event whose recurring flag and period
// disagree (recurring without a period, or a period without the flag).
var ErrInvalidRecurrenceState = errors.New("invalid recurrence state")

// RecurrencePeriod is the closed set of supported recurrence intervals.
// Stored as a smallint code; decode with PeriodFromCode at the query
// boundary so invalid codes never reach the scheduler.
type RecurrencePeriod int16

const (
	RecurDaily RecurrencePeriod = iota
	RecurWeekly
	RecurMonthly
	RecurYearly
)

func (p RecurrencePeriod) String() string {
	switch p {
	case RecurDaily:
		return "daily"
	case RecurWeekly:
		return "weekly"
	case RecurMonthly:
		return "monthly"
	case RecurYearly:
		return "yearly"
	}
	return fmt.Sprintf("period(%d)", int16(p))
}

// PeriodFromCode validates a stored period code.
func PeriodFromCode(code int16) (RecurrencePeriod, error) {
	if code < int16(RecurDaily) || code > int16(RecurYearly) {
		return 0, fmt.Errorf("%w: unknown period code %d", ErrInvalidRecurrenceState, code)
	}
	return RecurrencePeriod(code), nil
}

// ParsePeriod accepts the spelled-out period names and common short forms.
func ParsePeriod(s string) (RecurrencePeriod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return RecurDaily, nil
	case "weekly", "week":
		return RecurWeekly, nil
	case "monthly", "month":
		return RecurMonthly, nil
	case "yearly", "year":
		return RecurYearly, nil
	}
	return 0, fmt.Errorf("%w: unknown period %q", ErrInvalidRecurrenceState, s)
}

type Event struct {
	gorm.Model

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	AnchorTime  time.Time `gorm:"not null" json:"anchorTime"`

	IsRecurring      bool   `gorm:"default:false" json:"isRecurring"`
	RecurrencePeriod *int16 `gorm:"type:smallint" json:"recurrencePeriod"`

	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"ownerId"`

	Reminders []Reminder `gorm:"foreignKey:EventID" json:"reminders,omitempty"`
}

// Period decodes the stored period code. The second return is false when no
// period is set at all.
func (e *Event) Period() (RecurrencePeriod, bool, error) {
	if e.RecurrencePeriod == nil {
		return 0, false, nil
	}
	p, err := PeriodFromCode(*e.RecurrencePeriod)
	if err != nil {
		return 0, true, err
	}
	return p, true, nil
}

// ValidateRecurrence rejects the flag/period combinations the scheduler
// cannot act on. Called before persisting and again when an event is read
// back for rescheduling.
func (e *Event) ValidateRecurrence() error {
	if e.IsRecurring && e.RecurrencePeriod == nil {
		return fmt.Errorf("%w: event is recurring but has no period", ErrInvalidRecurrenceState)
	}
	if !e.IsRecurring && e.RecurrencePeriod != nil {
		return fmt.Errorf("%w: event has a period but is not recurring", ErrInvalidRecurrenceState)
	}
	if e.RecurrencePeriod != nil {
		if _, err := PeriodFromCode(*e.RecurrencePeriod); err != nil {
			return err
		}
	}
	return nil
}
