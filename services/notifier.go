// services/notifier.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"remindly-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notifier delivers one message per fired reminder. Delivery failure is
// logged by the caller and never retried within the tick.
type Notifier interface {
	Send(out Outcome) error
}

// RenderMessage formats the notification body: title heading, event time,
// then the description with any accumulated notes.
func RenderMessage(out Outcome) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(out.Event.Title)
	b.WriteString("\n## ")
	b.WriteString(out.Event.AnchorTime.Format(time.RFC1123))
	b.WriteString("\n")
	b.WriteString(out.RenderDescription())
	return b.String()
}

// TwilioNotifier sends the rendered message to the owning user's phone,
// over WhatsApp when the number is E.164 with a leading '+', otherwise SMS.
type TwilioNotifier struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewTwilioNotifier(db *gorm.DB) *TwilioNotifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioNotifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (n *TwilioNotifier) Send(out Outcome) error {
	to, err := n.recipient(out.Event.OwnerID)
	if err != nil {
		return err
	}

	channel := "sms"
	if strings.HasPrefix(to, "+") {
		to = "whatsapp:" + to
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(RenderMessage(out))

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	} else {
		log.Printf("Message sent to %s, but no SID returned", to)
	}
	return nil
}

// recipient resolves the owner's phone. Integrity-failure notifications
// carry no owner; those go to the operator number instead.
func (n *TwilioNotifier) recipient(ownerID uuid.UUID) (string, error) {
	if ownerID == uuid.Nil {
		fallback := os.Getenv("DEFAULT_NOTIFY_PHONE")
		if fallback == "" {
			return "", fmt.Errorf("no owner and DEFAULT_NOTIFY_PHONE not set")
		}
		return fallback, nil
	}

	var user models.User
	if err := n.db.First(&user, "id = ?", ownerID).Error; err != nil {
		return "", fmt.Errorf("resolve owner %s: %w", ownerID, err)
	}
	return user.Phone, nil
}
