package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"remindly-backend/models"

	"gorm.io/gorm"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

var errStore = errors.New("store unavailable")

// fakeStore is an in-memory ReminderStore with switchable failures.
type fakeStore struct {
	events    map[uint]models.Event
	reminders map[uint]models.Reminder
	nextID    uint

	failGetEvent       bool
	failDeleteEvent    bool
	failDeleteReminder bool
	failCreateReminder bool
	failLoadDue        bool

	// mismatchEvent, when set, is returned from GetEvent regardless of id.
	mismatchEvent *models.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[uint]models.Event),
		reminders: make(map[uint]models.Reminder),
	}
}

func (s *fakeStore) addEvent(e models.Event) models.Event {
	s.nextID++
	e.ID = s.nextID
	s.events[e.ID] = e
	return e
}

func (s *fakeStore) addReminder(trigger time.Time, eventID uint) models.Reminder {
	s.nextID++
	r := models.Reminder{TriggerTime: trigger, EventID: eventID}
	r.ID = s.nextID
	s.reminders[r.ID] = r
	return r
}

func (s *fakeStore) LoadDue(start, end time.Time) ([]models.Reminder, error) {
	if s.failLoadDue {
		return nil, errStore
	}
	var due []models.Reminder
	for _, r := range s.reminders {
		if !r.TriggerTime.Before(start) && !r.TriggerTime.After(end) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (s *fakeStore) GetEvent(id uint) (models.Event, error) {
	if s.failGetEvent {
		return models.Event{}, errStore
	}
	if s.mismatchEvent != nil {
		return *s.mismatchEvent, nil
	}
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (s *fakeStore) DeleteEvent(id uint) error {
	if s.failDeleteEvent {
		return errStore
	}
	delete(s.events, id)
	return nil
}

func (s *fakeStore) DeleteReminder(id uint) error {
	if s.failDeleteReminder {
		return errStore
	}
	delete(s.reminders, id)
	return nil
}

func (s *fakeStore) CreateReminder(trigger time.Time, eventID uint) (models.Reminder, error) {
	if s.failCreateReminder {
		return models.Reminder{}, errStore
	}
	return s.addReminder(trigger, eventID), nil
}

func periodPtr(p models.RecurrencePeriod) *int16 {
	code := int16(p)
	return &code
}

func TestHandleFiredNonRecurring(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{
		Title:      "Dentist",
		AnchorTime: dt(2024, time.June, 10, 9, 0, 0),
	})
	reminder := store.addReminder(event.AnchorTime, event.ID)

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 10)})
	out, err := lc.HandleFired(reminder)
	if err != nil {
		t.Fatalf("HandleFired: %v", err)
	}

	if len(out.Notes) != 0 {
		t.Errorf("unexpected notes: %+v", out.Notes)
	}
	if _, ok := store.reminders[reminder.ID]; ok {
		t.Error("reminder still in store")
	}
	if _, ok := store.events[event.ID]; ok {
		t.Error("non-recurring event still in store")
	}
}

func TestHandleFiredRecurringWeekly(t *testing.T) {
	store := newFakeStore()
	// 2024-06-05 is a Wednesday.
	event := store.addEvent(models.Event{
		Title:            "Standup",
		AnchorTime:       dt(2024, time.June, 5, 18, 0, 0),
		IsRecurring:      true,
		RecurrencePeriod: periodPtr(models.RecurWeekly),
	})
	reminder := store.addReminder(dt(2024, time.June, 12, 18, 0, 0), event.ID)

	now := dt(2024, time.June, 12, 18, 0, 5)
	lc := NewLifecycle(store, fixedClock{now})
	out, err := lc.HandleFired(reminder)
	if err != nil {
		t.Fatalf("HandleFired: %v", err)
	}

	if !out.HasNote(NoteRescheduled) {
		t.Fatalf("expected rescheduled note, got %+v", out.Notes)
	}
	if _, ok := store.reminders[reminder.ID]; ok {
		t.Error("fired reminder still in store")
	}
	if _, ok := store.events[event.ID]; !ok {
		t.Error("recurring event was deleted")
	}

	var created []models.Reminder
	for _, r := range store.reminders {
		if r.EventID == event.ID {
			created = append(created, r)
		}
	}
	if len(created) != 1 {
		t.Fatalf("got %d reminders for event, want 1", len(created))
	}
	want, err := NextOccurrence(models.RecurWeekly, event.AnchorTime, now)
	if err != nil {
		t.Fatalf("NextOccurrence: %v", err)
	}
	if !created[0].TriggerTime.Equal(want) {
		t.Errorf("new reminder at %v, want %v", created[0].TriggerTime, want)
	}
}

func TestHandleFiredOrphan(t *testing.T) {
	store := newFakeStore()
	reminder := store.addReminder(dt(2024, time.June, 10, 9, 0, 0), 999)

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 10)})
	_, err := lc.HandleFired(reminder)
	if !errors.Is(err, ErrOrphanReminder) {
		t.Fatalf("err = %v, want ErrOrphanReminder", err)
	}

	// Preserved for manual inspection.
	if _, ok := store.reminders[reminder.ID]; !ok {
		t.Error("orphaned reminder was deleted")
	}
}

func TestHandleFiredParentMismatch(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{Title: "Dentist"})
	reminder := store.addReminder(dt(2024, time.June, 10, 9, 0, 0), event.ID)

	impostor := models.Event{Title: "Impostor"}
	impostor.ID = event.ID + 100
	store.mismatchEvent = &impostor

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 10)})
	_, err := lc.HandleFired(reminder)
	if !errors.Is(err, ErrReminderParentMismatch) {
		t.Fatalf("err = %v, want ErrReminderParentMismatch", err)
	}
	if !IsIntegrityError(err) {
		t.Error("mismatch not classified as integrity error")
	}
}

func TestHandleFiredReminderDeleteFailure(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{Title: "Dentist"})
	reminder := store.addReminder(dt(2024, time.June, 10, 9, 0, 0), event.ID)
	store.failDeleteReminder = true

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 10)})
	out, err := lc.HandleFired(reminder)
	if err != nil {
		t.Fatalf("HandleFired: %v", err)
	}

	if !out.HasNote(NoteReminderDeleteFailed) {
		t.Fatalf("expected delete-failed note, got %+v", out.Notes)
	}
	// The handler presses on: the non-recurring event is still deleted.
	if _, ok := store.events[event.ID]; ok {
		t.Error("event not deleted after reminder delete failure")
	}
}

func TestHandleFiredEventDeleteFailure(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{Title: "Dentist", Description: "bring insurance card"})
	reminder := store.addReminder(dt(2024, time.June, 10, 9, 0, 0), event.ID)
	store.failDeleteEvent = true

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 10)})
	out, err := lc.HandleFired(reminder)
	if err != nil {
		t.Fatalf("HandleFired: %v", err)
	}

	if !out.HasNote(NoteEventDeleteFailed) {
		t.Fatalf("expected event-delete-failed note, got %+v", out.Notes)
	}
	rendered := out.RenderDescription()
	if !strings.HasPrefix(rendered, "bring insurance card") {
		t.Errorf("original description lost: %q", rendered)
	}
	if !strings.Contains(rendered, "manually") {
		t.Errorf("no manual-cleanup hint in %q", rendered)
	}
}

func TestHandleFiredInconsistentRecurrence(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{
		Title:       "Ghost",
		AnchorTime:  dt(2024, time.June, 5, 18, 0, 0),
		IsRecurring: true, // no period set
	})
	reminder := store.addReminder(dt(2024, time.June, 12, 18, 0, 0), event.ID)

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 12, 18, 0, 5)})
	out, err := lc.HandleFired(reminder)
	if err != nil {
		t.Fatalf("HandleFired: %v", err)
	}

	if !out.HasNote(NoteInconsistentRecurrence) {
		t.Fatalf("expected inconsistent-recurrence note, got %+v", out.Notes)
	}
	if !strings.Contains(out.RenderDescription(), "both recurring and not recurring") {
		t.Errorf("rendered description missing inconsistency text: %q", out.RenderDescription())
	}
}

func TestHandleFiredRescheduleFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *fakeStore) models.Event
	}{
		{
			name: "store create fails",
			setup: func(store *fakeStore) models.Event {
				store.failCreateReminder = true
				return models.Event{
					Title:            "Standup",
					AnchorTime:       dt(2024, time.June, 5, 18, 0, 0),
					IsRecurring:      true,
					RecurrencePeriod: periodPtr(models.RecurWeekly),
				}
			},
		},
		{
			name: "leap day anchor has no valid date",
			setup: func(store *fakeStore) models.Event {
				return models.Event{
					Title:            "Leapling Birthday",
					AnchorTime:       dt(2024, time.February, 29, 12, 0, 0),
					IsRecurring:      true,
					RecurrencePeriod: periodPtr(models.RecurYearly),
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			event := store.addEvent(tt.setup(store))
			reminder := store.addReminder(dt(2025, time.February, 28, 12, 0, 0), event.ID)

			lc := NewLifecycle(store, fixedClock{dt(2025, time.February, 28, 12, 0, 5)})
			out, err := lc.HandleFired(reminder)
			if err != nil {
				t.Fatalf("HandleFired: %v", err)
			}
			if !out.HasNote(NoteRescheduleFailed) {
				t.Fatalf("expected reschedule-failed note, got %+v", out.Notes)
			}
			if _, ok := store.events[event.ID]; !ok {
				t.Error("recurring event deleted on reschedule failure")
			}
		})
	}
}

func TestScheduleNextNotRecurring(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent(models.Event{Title: "One-off"})

	lc := NewLifecycle(store, fixedClock{dt(2024, time.June, 10, 9, 0, 0)})
	next, err := lc.ScheduleNext(event)
	if err != nil {
		t.Fatalf("ScheduleNext: %v", err)
	}
	if next != nil {
		t.Errorf("got reminder %+v for non-recurring event", next)
	}
}
