package core

import (
	"lms/internal/audit"
	"lms/internal/configuration"
	"lms/internal/models"
)

func NewAuditLogger(config models.AuditConfiguration) audit.IAuditLogger {
	switch config.Type {
	case configuration.ProviderFilesystem:
		return audit.NewFilesystemClient(config)
	default:
		return nil
	}
}
