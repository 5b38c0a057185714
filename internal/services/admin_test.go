package services

import (
	"testing"

	"lms/internal/configuration"
	"lms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedAuditLogger struct {
	MockAuditLogger
	SearchResults []map[string]any
	Daily         []models.TimeSeriesPoint
	LastCriteria  map[string][]string
}

func (f *fixedAuditLogger) Search(criteria map[string][]string) ([]map[string]interface{}, error) {
	f.LastCriteria = criteria
	return f.SearchResults, nil
}

func (f *fixedAuditLogger) CountByDay(_ map[string][]string, _ int) ([]models.TimeSeriesPoint, error) {
	return f.Daily, nil
}

func TestSearchAuditBuildsCriteria(t *testing.T) {
	auditLogger := &fixedAuditLogger{
		SearchResults: []map[string]any{{"action": configuration.AuditLoginInvalidPassword}},
		Daily:         []models.TimeSeriesPoint{{Date: "2026-08-29", Count: 3}},
	}
	service := AdminService{AuditLogger: auditLogger}

	response, err := service.SearchAudit(zap.NewNop(), models.SessionClaims{}, models.AdminAuditSearchBody{
		Actions: []string{configuration.AuditLoginInvalidPassword, configuration.AuditLoginAccountLocked},
		UserID:  "4b6e3f1e-8c1a-4f22-9d55-0b5c9a3d8e21",
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{configuration.AuditLoginInvalidPassword, configuration.AuditLoginAccountLocked},
		auditLogger.LastCriteria["action"])
	assert.Equal(t,
		[]string{"4b6e3f1e-8c1a-4f22-9d55-0b5c9a3d8e21"},
		auditLogger.LastCriteria["user_id"])
	require.Len(t, response.Entries, 1)
	require.Len(t, response.DailyCounts, 1)
	assert.Equal(t, 3, response.DailyCounts[0].Count)
}
