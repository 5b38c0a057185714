package events

import (
	"encoding/json"

	"lms/internal/messaging"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Envelope wraps every message put on an event topic.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	TypeAccountActivation = "account_activation"
	TypePasswordReset     = "password_reset"
	TypeUserAuthenticated = "user_authenticated"
)

// AccountActivationPayload asks the notifications worker to (re-)send an
// activation email.
type AccountActivationPayload struct {
	Email         string `json:"email"`
	ActivationURL string `json:"activation_url"`
}

// PasswordResetPayload asks the notifications worker to send a password
// reset email. Reason distinguishes a user-requested reset from a forced
// reset (non-compliant password).
type PasswordResetPayload struct {
	Email    string `json:"email"`
	Reason   string `json:"reason"`
	ResetURL string `json:"reset_url"`
}

// UserAuthenticatedPayload is the analytics event emitted on every
// successful login. Delivery is fire-and-forget.
type UserAuthenticatedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Event    string `json:"event"`
	CourseID string `json:"course_id,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Event pairs an envelope with the publisher it should go to.
type Event struct {
	publisher messaging.IPublisher
	envelope  Envelope
}

func newEvent(publisher messaging.IPublisher, eventType string, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal event payload",
			zap.String("type", eventType), zap.Error(err))
	}
	return Event{
		publisher: publisher,
		envelope:  Envelope{Type: eventType, Payload: raw},
	}
}

func NewAccountActivation(publisher messaging.IPublisher, payload AccountActivationPayload) Event {
	return newEvent(publisher, TypeAccountActivation, payload)
}

func NewPasswordReset(publisher messaging.IPublisher, payload PasswordResetPayload) Event {
	return newEvent(publisher, TypePasswordReset, payload)
}

func NewUserAuthenticated(publisher messaging.IPublisher, payload UserAuthenticatedPayload) Event {
	return newEvent(publisher, TypeUserAuthenticated, payload)
}

// Trigger publishes the event. Failures are logged, never surfaced: no event
// is important enough to fail the request that produced it.
func (e Event) Trigger() {
	if e.publisher == nil {
		return
	}

	body, err := json.Marshal(e.envelope)
	if err != nil {
		zap.L().Error("Failed to marshal event envelope",
			zap.String("type", e.envelope.Type), zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	if err := e.publisher.Publish(msg); err != nil {
		zap.L().Error("Failed to publish event",
			zap.String("type", e.envelope.Type), zap.Error(err))
	}
}
