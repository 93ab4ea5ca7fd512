package services

import "errors"

var (
	// ErrInvalidDate means recurrence arithmetic produced a calendar date
	// that does not exist (day 31 in a 30-day month, Feb 29 outside a leap
	// year). Surfaced as a rescheduling warning, never a crash.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrOrphanReminder means a reminder's event_id resolves to nothing.
	ErrOrphanReminder = errors.New("reminder has no parent event")

	// ErrReminderParentMismatch means the resolved event's id does not
	// match the reminder's back-reference.
	ErrReminderParentMismatch = errors.New("parent event does not own reminder")
)
