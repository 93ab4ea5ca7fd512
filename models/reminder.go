package models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder is a single scheduled firing. It only back-references its owning
// event; the event never tracks reminders beyond the association above.
type Reminder struct {
	gorm.Model

	TriggerTime time.Time `gorm:"index;not null" json:"triggerTime"`
	EventID     uint      `gorm:"index;not null" json:"eventId"`
}
