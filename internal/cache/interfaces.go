package cache

import "lms/internal/models"

type ICache interface {
	RegisterPlatform(id string) error
	DeleteInactivePlatform() error
	StartIdentityTicker(id string)

	// GetRateLimit increments the per-identifier attempt counter and returns
	// the seconds until retry when the limit is exceeded, zero otherwise.
	GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error)

	// StorePipeline persists an in-progress third-party handshake under the
	// given token, bounded by the pipeline TTL.
	StorePipeline(token string, pipeline models.Pipeline) error
	// GetPipeline returns the handshake for the token. The bool reports
	// whether a pipeline was found.
	GetPipeline(token string) (models.Pipeline, bool, error)
	// DeletePipeline removes a completed or abandoned handshake.
	DeletePipeline(token string) error

	TryAcquireLock(key string, instanceID string, ttlSeconds int) (bool, error)
	RefreshLock(key string, instanceID string, ttlSeconds int) (bool, error)

	Close() error
}
