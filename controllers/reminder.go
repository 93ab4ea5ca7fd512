// controllers/reminder.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"remindly-backend/config"
	"remindly-backend/models"
	"remindly-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReminderInput defines the expected JSON structure
type CreateReminderInput struct {
	EventID uint `json:"eventId" binding:"required"`
	// When is either an RFC 3339 time or "N <unit> before" relative to the
	// event's anchor time.
	When string `json:"when" binding:"required"`
}

// parseReminderTime resolves a reminder spec against an event's anchor.
func parseReminderTime(spec string, anchor time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}
	offset, err := utils.ParseReminderOffset(spec)
	if err != nil {
		return time.Time{}, err
	}
	return anchor.Add(-offset), nil
}

// CreateReminder adds a reminder to an existing event.
func CreateReminder(c *gin.Context) {
	var input CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var event models.Event
	if err := config.DB.First(&event, input.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	trigger, err := parseReminderTime(input.When, event.AnchorTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	reminder := models.Reminder{TriggerTime: trigger, EventID: event.ID}
	if err := config.DB.Create(&reminder).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create reminder")
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ReminderListing pairs a reminder with its parent title where it can be
// resolved.
type ReminderListing struct {
	models.Reminder
	EventTitle string `json:"eventTitle"`
}

// GetReminders lists reminders, optionally scoped to one event via
// ?eventId=.
func GetReminders(c *gin.Context) {
	query := config.DB.Model(&models.Reminder{})
	if eventID := c.Query("eventId"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}

	var reminders []models.Reminder
	if err := query.Find(&reminders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}

	listings := make([]ReminderListing, 0, len(reminders))
	for _, r := range reminders {
		title := "Reminder"
		var parent models.Event
		if err := config.DB.First(&parent, r.EventID).Error; err == nil {
			title = fmt.Sprintf("%s Reminder", parent.Title)
		}
		listings = append(listings, ReminderListing{Reminder: r, EventTitle: title})
	}

	c.JSON(http.StatusOK, listings)
}

// DeleteReminder removes a reminder by id.
func DeleteReminder(c *gin.Context) {
	result := config.DB.Delete(&models.Reminder{}, c.Param("id"))
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete reminder")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}
