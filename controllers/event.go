// controllers/event.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"remindly-backend/config"
	"remindly-backend/models"
	"remindly-backend/services"
	"remindly-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateEventInput defines the expected JSON structure
type CreateEventInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	AnchorTime  time.Time `json:"anchorTime" binding:"required"`
	IsRecurring bool      `json:"isRecurring"`
	// Period is one of daily/weekly/monthly/yearly; required when recurring.
	Period string `json:"period"`
	// Reminder optionally adds an earlier reminder on top of the day-of
	// one: either an RFC 3339 time or "N <unit> before".
	Reminder string `json:"reminder"`
}

type CreateBirthdayInput struct {
	// Member is the celebrant's registered name or user id.
	Member string    `json:"member" binding:"required"`
	Date   time.Time `json:"date" binding:"required"`
}

// calendar builds the lifecycle service the event surface shares with the
// scheduler.
func calendar() *services.Lifecycle {
	return services.NewLifecycle(services.NewGormStore(config.DB), services.SystemClock)
}

// CreateEvent creates an event plus its day-of reminder, an optional
// earlier reminder, and the first recurrence reminder for recurring
// events. Reminder-creation failures after the event exists are reported
// in the created event's description rather than failing the request.
func CreateEvent(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	event := models.Event{
		Title:       input.Title,
		Description: input.Description,
		AnchorTime:  input.AnchorTime,
		IsRecurring: input.IsRecurring,
		OwnerID:     ownerID,
	}
	if input.Period != "" {
		period, err := models.ParsePeriod(input.Period)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		code := int16(period)
		event.RecurrencePeriod = &code
	}
	if err := event.ValidateRecurrence(); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Reject a bad reminder spec before anything is persisted.
	var earlierTrigger *time.Time
	if input.Reminder != "" {
		trigger, err := parseReminderTime(input.Reminder, input.AnchorTime)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		earlierTrigger = &trigger
	}

	if err := config.DB.Create(&event).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create event")
		return
	}

	attachReminders(&event, earlierTrigger)

	c.JSON(http.StatusCreated, event)
}

// attachReminders creates the day-of reminder, the optional earlier one,
// and the recurring follow-up, appending the outcome of each to the
// event's description the way the notifier reports lifecycle outcomes.
func attachReminders(event *models.Event, earlierTrigger *time.Time) {
	store := services.NewGormStore(config.DB)
	desc := event.Description

	if _, err := store.CreateReminder(event.AnchorTime, event.ID); err != nil {
		desc += "\nEvent's day-of reminder could not be created"
	}
	if earlierTrigger != nil {
		if r, err := store.CreateReminder(*earlierTrigger, event.ID); err != nil {
			desc += "\nEvent's reminder could not be created"
		} else {
			desc += fmt.Sprintf("\nevent created with reminder %d at %s", r.ID, r.TriggerTime.Format(time.RFC1123))
		}
	}

	if event.IsRecurring {
		next, err := calendar().ScheduleNext(*event)
		switch {
		case err != nil:
			desc += fmt.Sprintf("\nError when handling recurrence: %v\nEvent was still created, but reminders might need to be added manually", err)
		case next == nil:
			desc += "\nNo recurring reminder set"
		default:
			desc += fmt.Sprintf("\nRecurring reminder set for %s with id %d", next.TriggerTime.Format(time.RFC1123), next.ID)
		}
	}

	if desc != event.Description {
		event.Description = desc
		if err := config.DB.Model(event).Update("description", desc).Error; err != nil {
			event.Description = desc + "\nWarning: event description could not be updated"
		}
	}
}

// CreateBirthday creates a yearly-recurring Birthday event owned by the
// named member, reminders included.
func CreateBirthday(c *gin.Context) {
	var input CreateBirthdayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	member, err := resolveMember(input.Member)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	yearly := int16(models.RecurYearly)
	event := models.Event{
		Title:            "Birthday",
		Description:      fmt.Sprintf("It's %s's birthday today! Happy birthday %s", member.Name, member.Name),
		AnchorTime:       input.Date,
		IsRecurring:      true,
		RecurrencePeriod: &yearly,
		OwnerID:          member.ID,
	}
	if err := config.DB.Create(&event).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create birthday")
		return
	}

	attachReminders(&event, nil)

	c.JSON(http.StatusCreated, event)
}

// GetEvents lists all events with their reminders.
func GetEvents(c *gin.Context) {
	var events []models.Event
	if err := config.DB.Preload("Reminders").Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent retrieves a single event with its reminders.
func GetEvent(c *gin.Context) {
	var event models.Event
	if err := config.DB.Preload("Reminders").First(&event, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event and its reminders.
func DeleteEvent(c *gin.Context) {
	var event models.Event
	if err := config.DB.First(&event, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Reminders first, so none are left dangling.
	if err := config.DB.Where("event_id = ?", event.ID).Delete(&models.Reminder{}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event reminders")
		return
	}
	if err := config.DB.Delete(&event).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully", "event": event.Title})
}

// currentUser pulls the authenticated user's id out of the request context.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// resolveMember finds a user by id or by registered name.
func resolveMember(identifier string) (models.User, error) {
	var user models.User
	if id, err := uuid.Parse(identifier); err == nil {
		err := config.DB.First(&user, "id = ?", id).Error
		return user, err
	}
	err := config.DB.First(&user, "name = ?", identifier).Error
	return user, err
}
