package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"lms/internal/models"

	"gorm.io/gorm"
)

// StudentModuleService exposes per-learner courseware state to in-process
// consumers (proctoring, instructor tooling). It is not routed.
type StudentModuleService struct {
	DB *gorm.DB
}

// GetStateAsJSON returns the learner's state for a courseware block as a
// decoded document. A learner who never touched the block gets an empty map,
// not an error.
func (s StudentModuleService) GetStateAsJSON(username string, blockID string) (map[string]any, error) {
	var module models.StudentModule
	result := s.DB.
		Where("student_username = ? AND module_state_key = ?", username, blockID).
		First(&module)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("loading student module state: %w", result.Error)
	}

	if module.State == "" {
		return map[string]any{}, nil
	}

	state := map[string]any{}
	if err := json.Unmarshal([]byte(module.State), &state); err != nil {
		return nil, fmt.Errorf("decoding student module state: %w", err)
	}
	return state, nil
}
