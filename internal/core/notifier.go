package core

import (
	"lms/internal/configuration"
	"lms/internal/models"
	"lms/internal/notifier"
)

func NewNotifier(config models.NotifierConfiguration) notifier.INotifier {
	switch config.Type {
	case configuration.ProviderSMTP:
		return notifier.NewSMTPNotifier(*config.SMTP)
	case configuration.ProviderFilesystem:
		return notifier.NewFilesystemNotifier(*config.Filesystem)
	default:
		return nil
	}
}
