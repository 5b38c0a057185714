package events

import (
	"encoding/json"
	"fmt"

	"lms/internal/notifier"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// EventParams carries everything the notifications worker needs to turn an
// event into an outbound email.
type EventParams struct {
	PlatformName string
	SupportURL   string
	Notifier     notifier.INotifier
}

// HandleEvents drains the notifications topic and dispatches each event to
// the notifier. It returns when the channel closes. Messages are acked even
// on handler failure: notification delivery is best-effort and a poison
// message must not wedge the consumer.
func HandleEvents(params EventParams, messages <-chan *message.Message) {
	for msg := range messages {
		if err := handleMessage(params, msg); err != nil {
			zap.L().Error("Failed to handle notification event",
				zap.String("message_uuid", msg.UUID), zap.Error(err))
		}
		msg.Ack()
	}
}

func handleMessage(params EventParams, msg *message.Message) error {
	var envelope Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return fmt.Errorf("unmarshalling envelope: %w", err)
	}

	switch envelope.Type {
	case TypeAccountActivation:
		var payload AccountActivationPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshalling %s payload: %w", envelope.Type, err)
		}
		return params.Notifier.NotifyFromTemplate(
			payload.Email,
			fmt.Sprintf("Activate your %s account", params.PlatformName),
			"account_activation",
			map[string]string{
				"PlatformName":  params.PlatformName,
				"ActivationURL": payload.ActivationURL,
				"SupportURL":    params.SupportURL,
			},
		)

	case TypePasswordReset:
		var payload PasswordResetPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshalling %s payload: %w", envelope.Type, err)
		}
		return params.Notifier.NotifyFromTemplate(
			payload.Email,
			fmt.Sprintf("Reset your %s password", params.PlatformName),
			"password_reset",
			map[string]string{
				"PlatformName": params.PlatformName,
				"Reason":       payload.Reason,
				"ResetURL":     payload.ResetURL,
				"SupportURL":   params.SupportURL,
			},
		)

	default:
		zap.L().Debug("Ignoring event with no notification handler",
			zap.String("type", envelope.Type))
		return nil
	}
}
