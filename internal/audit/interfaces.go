package audit

import "lms/internal/models"

// IAuditLogger records and queries authentication audit entries.
type IAuditLogger interface {
	Send(entry models.AuditEntry) error
	Search(searchCriteria map[string][]string) ([]map[string]interface{}, error)
	CountByDay(searchCriteria map[string][]string, days int) ([]models.TimeSeriesPoint, error)
	Close() error
}
