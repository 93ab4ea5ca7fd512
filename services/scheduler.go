// services/scheduler.go
package services

import (
	"log"
	"sync"
	"time"

	"remindly-backend/models"

	"github.com/robfig/cron/v3"
)

const (
	// RefreshWindow is how far ahead the cache looks. It must stay strictly
	// larger than TriggerPeriod so no reminder can come due between
	// refreshes without having been cached first.
	RefreshWindow = 30 * time.Minute

	refreshSpec = "@every 30m"
	triggerSpec = "@every 1m"
)

// Scheduler owns the working set of soon-due reminders and the two loops
// that keep it fresh and fire from it. The refresh loop and the trigger
// loop only communicate through the cache; neither holds the lock while
// touching the store or the notifier.
type Scheduler struct {
	store     ReminderStore
	lifecycle *Lifecycle
	notifier  Notifier
	clock     Clock

	mu    sync.Mutex
	cache []models.Reminder
}

func NewScheduler(store ReminderStore, lifecycle *Lifecycle, notifier Notifier, clock Clock) *Scheduler {
	return &Scheduler{
		store:     store,
		lifecycle: lifecycle,
		notifier:  notifier,
		clock:     clock,
	}
}

// Start primes the cache and registers both loops. The returned cron keeps
// running until the process shuts down; stopping it just stops scheduling
// further ticks.
func (s *Scheduler) Start() *cron.Cron {
	s.Refresh()

	c := cron.New()
	c.AddFunc(refreshSpec, s.Refresh)
	c.AddFunc(triggerSpec, s.Tick)
	c.Start()

	log.Println("Reminder scheduler started")
	return c
}

// Refresh replaces the cache with every reminder due inside the refresh
// window. A failed query keeps the previous contents; the store self-heals
// on a later tick and a stale cache beats an empty one.
func (s *Scheduler) Refresh() {
	now := s.clock.Now()
	due, err := s.store.LoadDue(now, now.Add(RefreshWindow))
	if err != nil {
		log.Printf("Failed to fetch reminders: %v", err)
		return
	}

	s.mu.Lock()
	s.cache = due
	s.mu.Unlock()
}

// Tick fires every cached reminder that is due this minute. Handler errors
// are logged and do not stop the rest of the tick; a notification still
// goes out per due reminder, carrying the error when the parent could not
// be resolved.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	for _, r := range s.snapshot() {
		if !IsDue(r.TriggerTime, now) {
			continue
		}

		out, err := s.lifecycle.HandleFired(r)
		if err != nil {
			log.Printf("Error handling fired reminder %d: %v", r.ID, err)
			out = fallbackOutcome(r, err, now)
		}

		if err := s.notifier.Send(out); err != nil {
			log.Printf("Error sending reminder message for reminder %d: %v", r.ID, err)
		}
	}
}

func (s *Scheduler) snapshot() []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make([]models.Reminder, len(s.cache))
	copy(snap, s.cache)
	return snap
}

// CachedReminders exposes the current working set, for the listing surface
// and for tests.
func (s *Scheduler) CachedReminders() []models.Reminder {
	return s.snapshot()
}

// fallbackOutcome builds the best-effort notification for a reminder whose
// parent could not be resolved: a placeholder event whose description
// carries the integrity error.
func fallbackOutcome(r models.Reminder, err error, now time.Time) Outcome {
	event := models.Event{
		Title:      "Reminder",
		AnchorTime: now,
	}
	event.Description = err.Error()
	return Outcome{Event: event}
}
