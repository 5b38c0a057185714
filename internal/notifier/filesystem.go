package notifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"lms/internal/models"

	"go.uber.org/zap"
)

// FilesystemNotifier drops each message as a JSON file instead of sending
// mail. Local development and tests read the files back to assert on
// activation and password reset deliveries.
type FilesystemNotifier struct {
	directory string
	sequence  atomic.Uint64
}

func NewFilesystemNotifier(config models.FilesystemNotifierConfiguration) *FilesystemNotifier {
	if err := os.MkdirAll(config.Directory, 0750); err != nil {
		zap.L().Fatal("Failed to create notification directory", zap.Error(err))
	}
	return &FilesystemNotifier{directory: config.Directory}
}

type notificationRecord struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Template string `json:"template_name"`
	Args     any    `json:"args"`
	SentAt   string `json:"timestamp"`
}

func (f *FilesystemNotifier) NotifyFromTemplate(
	to string,
	subject string,
	templateName string,
	data any,
) error {
	record := notificationRecord{
		To:       to,
		Subject:  subject,
		Template: templateName,
		Args:     data,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	}

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// The sequence keeps names unique when two messages land in the
	// same nanosecond, which happens under the race detector.
	name := fmt.Sprintf("%s-%d-%d.json", templateName, time.Now().UnixNano(), f.sequence.Add(1))
	path := filepath.Join(f.directory, name)

	if err = os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write notification file: %w", err)
	}

	zap.L().Info("Notification written to filesystem",
		zap.String("path", path),
		zap.String("template", templateName),
		zap.String("to", to),
	)

	return nil
}
