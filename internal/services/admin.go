package services

import (
	"lms/internal/audit"
	"lms/internal/handlers"
	m "lms/internal/middlewares"
	"lms/internal/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService exposes the audit index to staff: who failed to log in, how
// often and when.
type AdminService struct {
	DB          *gorm.DB
	AuditLogger audit.IAuditLogger
}

func (s AdminService) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(m.AuthorizeStaff(s.DB)).
		With(m.Validate[models.AdminAuditSearchBody]).
		Post("/audit/search", handlers.CreateHandler(s.SearchAudit))

	return r
}

func (s AdminService) SearchAudit(
	_ *zap.Logger,
	_ models.SessionClaims,
	body models.AdminAuditSearchBody,
) (models.AdminAuditSearchResponse, error) {
	criteria := map[string][]string{}
	if len(body.Actions) > 0 {
		criteria["action"] = body.Actions
	}
	if body.UserID != "" {
		criteria["user_id"] = []string{body.UserID}
	}

	entries, err := s.AuditLogger.Search(criteria)
	if err != nil {
		return models.AdminAuditSearchResponse{}, err
	}

	days := body.Days
	if days == 0 {
		days = 7
	}
	daily, err := s.AuditLogger.CountByDay(criteria, days)
	if err != nil {
		return models.AdminAuditSearchResponse{}, err
	}

	return models.AdminAuditSearchResponse{
		Entries:     entries,
		DailyCounts: daily,
	}, nil
}
