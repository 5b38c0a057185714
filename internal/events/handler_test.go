package events

import (
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedNotification struct {
	To           string
	Subject      string
	TemplateName string
	Data         any
}

type mockNotifier struct {
	Sent []recordedNotification
}

func (m *mockNotifier) NotifyFromTemplate(to string, subject string, templateName string, data any) error {
	m.Sent = append(m.Sent, recordedNotification{to, subject, templateName, data})
	return nil
}

func envelopeMessage(t *testing.T, eventType string, payload any) *message.Message {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), body)
}

func TestHandleEventsDispatchesActivationEmail(t *testing.T) {
	notify := &mockNotifier{}
	params := EventParams{PlatformName: "Open LMS", SupportURL: "/support", Notifier: notify}

	messages := make(chan *message.Message, 1)
	messages <- envelopeMessage(t, TypeAccountActivation, AccountActivationPayload{
		Email:         "learner@example.com",
		ActivationURL: "http://lms.example.com/activate/abc",
	})
	close(messages)

	HandleEvents(params, messages)

	require.Len(t, notify.Sent, 1)
	sent := notify.Sent[0]
	assert.Equal(t, "learner@example.com", sent.To)
	assert.Equal(t, "Activate your Open LMS account", sent.Subject)
	assert.Equal(t, "account_activation", sent.TemplateName)
}

func TestHandleEventsDispatchesPasswordReset(t *testing.T) {
	notify := &mockNotifier{}
	params := EventParams{PlatformName: "Open LMS", Notifier: notify}

	messages := make(chan *message.Message, 1)
	messages <- envelopeMessage(t, TypePasswordReset, PasswordResetPayload{
		Email:    "learner@example.com",
		Reason:   "Your current password does not meet the platform password requirements.",
		ResetURL: "http://lms.example.com/reset-password",
	})
	close(messages)

	HandleEvents(params, messages)

	require.Len(t, notify.Sent, 1)
	assert.Equal(t, "password_reset", notify.Sent[0].TemplateName)
	assert.Equal(t, "Reset your Open LMS password", notify.Sent[0].Subject)
}

func TestHandleEventsIgnoresUnknownAndMalformed(t *testing.T) {
	notify := &mockNotifier{}
	params := EventParams{PlatformName: "Open LMS", Notifier: notify}

	messages := make(chan *message.Message, 2)
	messages <- envelopeMessage(t, TypeUserAuthenticated, UserAuthenticatedPayload{UserID: "user-1"})
	messages <- message.NewMessage(watermill.NewUUID(), []byte("not-json"))
	close(messages)

	HandleEvents(params, messages)

	assert.Empty(t, notify.Sent)
}
