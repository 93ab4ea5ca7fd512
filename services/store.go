// services/store.go
package services

import (
	"time"

	"remindly-backend/models"

	"gorm.io/gorm"
)

// ReminderStore is everything the scheduler needs from persistence. The
// scheduler never distinguishes store error subtypes beyond "failed"; the
// gorm implementation below is authoritative, the cache is not.
type ReminderStore interface {
	LoadDue(start, end time.Time) ([]models.Reminder, error)
	GetEvent(id uint) (models.Event, error)
	DeleteEvent(id uint) error
	DeleteReminder(id uint) error
	CreateReminder(trigger time.Time, eventID uint) (models.Reminder, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadDue(start, end time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.Where("trigger_time BETWEEN ? AND ?", start, end).Find(&reminders).Error
	return reminders, err
}

func (s *GormStore) GetEvent(id uint) (models.Event, error) {
	var event models.Event
	err := s.db.First(&event, id).Error
	return event, err
}

func (s *GormStore) DeleteEvent(id uint) error {
	return s.db.Delete(&models.Event{}, id).Error
}

func (s *GormStore) DeleteReminder(id uint) error {
	return s.db.Delete(&models.Reminder{}, id).Error
}

func (s *GormStore) CreateReminder(trigger time.Time, eventID uint) (models.Reminder, error) {
	reminder := models.Reminder{TriggerTime: trigger, EventID: eventID}
	err := s.db.Create(&reminder).Error
	return reminder, err
}
