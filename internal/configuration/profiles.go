package configuration

import (
	"lms/internal/models"

	"go.uber.org/zap"
)

const (
	ProfileDefault = "default"
	ProfileAPI     = "api"
	ProfileWorker  = "worker"
)

// Profiles defines all available deployment profiles.
var Profiles = map[string]models.Profile{
	ProfileDefault: {
		Name:       ProfileDefault,
		HTTPServer: true,
		Workers: models.WorkerConfig{
			Notifications: models.WorkerModeAll,
		},
	},
	ProfileAPI: {
		Name:       ProfileAPI,
		HTTPServer: true,
		Workers: models.WorkerConfig{
			Notifications: models.WorkerModeDisabled,
		},
	},
	ProfileWorker: {
		Name:       ProfileWorker,
		HTTPServer: false,
		Workers: models.WorkerConfig{
			Notifications: models.WorkerModeSingleton,
		},
	},
}

// GetProfile returns the profile for the given name, falling back to the
// default profile for unknown names.
func GetProfile(name string) models.Profile {
	profile, ok := Profiles[name]
	if !ok {
		zap.L().Warn("Unknown profile, using default", zap.String("profile", name))
		return Profiles[ProfileDefault]
	}
	return profile
}
