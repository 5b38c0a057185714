package audit

import (
	"testing"

	"lms/internal/configuration"
	"lms/internal/models"
)

func newTestFilesystemClient(t *testing.T) *FilesystemClient {
	t.Helper()
	dir := t.TempDir() + "/audit"
	config := models.AuditConfiguration{
		Type: "filesystem",
		Filesystem: &models.FilesystemAuditConfiguration{
			Directory: dir,
		},
	}
	client := NewFilesystemClient(config)
	t.Cleanup(func() { _ = client.Close() })
	return client.(*FilesystemClient)
}

func TestFilesystemSendAndSearch(t *testing.T) {
	client := newTestFilesystemClient(t)

	err := client.Send(models.AuditEntry{
		Message:  "Login failed (invalid_password)",
		Action:   configuration.AuditLoginInvalidPassword,
		UserID:   "user-1",
		Username: "learner",
		Email:    "learner@example.com",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	results, err := client.Search(map[string][]string{
		"action": {configuration.AuditLoginInvalidPassword},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r["action"] != configuration.AuditLoginInvalidPassword {
		t.Errorf("expected action=%s, got %v", configuration.AuditLoginInvalidPassword, r["action"])
	}
	if r["user_id"] != "user-1" {
		t.Errorf("expected user_id=user-1, got %v", r["user_id"])
	}
	if r["email"] != "learner@example.com" {
		t.Errorf("expected email=learner@example.com, got %v", r["email"])
	}
}

func TestFilesystemSearchFiltersByAction(t *testing.T) {
	client := newTestFilesystemClient(t)

	entries := []models.AuditEntry{
		{Message: "Login failed", Action: configuration.AuditLoginInvalidPassword, UserID: "user-1"},
		{Message: "Login succeeded", Action: configuration.AuditLoginSucceeded, UserID: "user-1"},
		{Message: "Logout", Action: configuration.AuditLogout, UserID: "user-1"},
	}
	for _, entry := range entries {
		if err := client.Send(entry); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	results, err := client.Search(map[string][]string{
		"action": {configuration.AuditLoginSucceeded, configuration.AuditLogout},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestFilesystemSearchWithoutPII(t *testing.T) {
	// Entries written with PII squelched carry the category but no
	// identifiers; they must still be findable.
	client := newTestFilesystemClient(t)

	err := client.Send(models.AuditEntry{
		Message: "Login failed (unknown_user)",
		Action:  configuration.AuditLoginUnknownUser,
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	results, err := client.Search(map[string][]string{
		"action": {configuration.AuditLoginUnknownUser},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0]["email"] != "" {
		t.Errorf("expected empty email, got %v", results[0]["email"])
	}
}

func TestFilesystemCountByDay(t *testing.T) {
	client := newTestFilesystemClient(t)

	for range 3 {
		if err := client.Send(models.AuditEntry{
			Message: "Login failed",
			Action:  configuration.AuditLoginInvalidPassword,
		}); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	points, err := client.CountByDay(map[string][]string{
		"action": {configuration.AuditLoginInvalidPassword},
	}, 7)
	if err != nil {
		t.Fatalf("CountByDay failed: %v", err)
	}

	total := 0
	for _, point := range points {
		total += point.Count
	}
	if total != 3 {
		t.Errorf("expected a total of 3 entries, got %d", total)
	}
}
