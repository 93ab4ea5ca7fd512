// services/lifecycle.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"remindly-backend/models"
)

// NoteKind identifies which step of fired-reminder handling produced a
// note. Kinds keep the outcome testable; prose is rendered only at the
// notification boundary.
type NoteKind int

const (
	NoteReminderDeleteFailed NoteKind = iota
	NoteEventDeleteFailed
	NoteRescheduleFailed
	NoteInconsistentRecurrence
	NoteRescheduled
)

type Note struct {
	Kind NoteKind
	Text string
}

// Outcome is the result of handling a fired reminder: the resolved parent
// event plus everything worth telling the user about what happened to it.
type Outcome struct {
	Event models.Event
	Notes []Note
}

// RenderDescription joins the event's own description with the accumulated
// notes, one per line. This is the text the notification carries.
func (o Outcome) RenderDescription() string {
	var b strings.Builder
	b.WriteString(o.Event.Description)
	for _, n := range o.Notes {
		b.WriteString("\n")
		b.WriteString(n.Text)
	}
	return b.String()
}

// Lifecycle runs the state transitions for a fired reminder: delete the
// reminder, then delete or reschedule the owning event. Each step after
// parent resolution is best-effort; failures become notes on the outcome
// so a notification can still go out with the best available information.
type Lifecycle struct {
	store ReminderStore
	clock Clock
}

func NewLifecycle(store ReminderStore, clock Clock) *Lifecycle {
	return &Lifecycle{store: store, clock: clock}
}

// HandleFired resolves the reminder's parent and applies the lifecycle
// steps. Only a missing or mismatched parent is fatal; the reminder is then
// left in place for manual inspection, since deleting it would destroy the
// only evidence of the integrity fault.
func (l *Lifecycle) HandleFired(r models.Reminder) (Outcome, error) {
	parent, err := l.store.GetEvent(r.EventID)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: event %d: %v", ErrOrphanReminder, r.EventID, err)
	}
	if parent.ID != r.EventID {
		return Outcome{}, fmt.Errorf("%w: reminder %d expected event %d, got %d",
			ErrReminderParentMismatch, r.ID, r.EventID, parent.ID)
	}

	out := Outcome{Event: parent}

	// The reminder goes away no matter what happens below; a reminder that
	// survives its own firing would fire again.
	if err := l.store.DeleteReminder(r.ID); err != nil {
		out.note(NoteReminderDeleteFailed, fmt.Sprintf(
			"Error removing reminder %d: %v\nMake sure to manually remove the reminder later", r.ID, err))
	}

	if !parent.IsRecurring {
		if err := l.store.DeleteEvent(parent.ID); err != nil {
			out.note(NoteEventDeleteFailed, fmt.Sprintf(
				"Warning: event not recurring but was not deleted\ndeletion failure caused by error: %v\nEvent may need to be modified/deleted manually", err))
		}
		return out, nil
	}

	next, err := l.ScheduleNext(parent)
	switch {
	case err != nil:
		out.note(NoteRescheduleFailed, fmt.Sprintf(
			"Warning: recurring reminder failed to set\nErr msg: %v", err))
	case next == nil:
		out.note(NoteInconsistentRecurrence, fmt.Sprintf(
			"Warning: %s is both recurring and not recurring", parent.Title))
	default:
		out.note(NoteRescheduled, fmt.Sprintf(
			"Reminder for recurring event %s set: id %d at %s",
			parent.Title, next.ID, next.TriggerTime.Format(time.RFC1123)))
	}
	return out, nil
}

// ScheduleNext creates the reminder for a recurring event's next
// occurrence. Returns (nil, nil) when the event is not actually
// schedulable: not recurring at all, or flagged recurring with no period.
func (l *Lifecycle) ScheduleNext(e models.Event) (*models.Reminder, error) {
	if !e.IsRecurring {
		return nil, nil
	}
	period, ok, err := e.Period()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	next, err := NextOccurrence(period, e.AnchorTime, l.clock.Now())
	if err != nil {
		return nil, err
	}
	reminder, err := l.store.CreateReminder(next, e.ID)
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (o *Outcome) note(kind NoteKind, text string) {
	o.Notes = append(o.Notes, Note{Kind: kind, Text: text})
}

// HasNote reports whether the outcome carries a note of the given kind.
func (o Outcome) HasNote(kind NoteKind) bool {
	for _, n := range o.Notes {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// IsIntegrityError reports whether err is one of the two faults that abort
// a single reminder's handling.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrOrphanReminder) || errors.Is(err, ErrReminderParentMismatch)
}
