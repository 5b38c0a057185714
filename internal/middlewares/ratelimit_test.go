package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/internal/cache"
	"lms/internal/models"

	"github.com/stretchr/testify/assert"
)

// stubCache returns a fixed retry-after value and records the identifier the
// middleware asked about.
type stubCache struct {
	retryAfter int
	askedFor   string
}

func (s *stubCache) RegisterPlatform(_ string) error { return nil }
func (s *stubCache) DeleteInactivePlatform() error   { return nil }
func (s *stubCache) StartIdentityTicker(_ string)    {}
func (s *stubCache) GetRateLimit(identifier string, _ int) (int, error) {
	s.askedFor = identifier
	return s.retryAfter, nil
}
func (s *stubCache) StorePipeline(_ string, _ models.Pipeline) error { return nil }
func (s *stubCache) GetPipeline(_ string) (models.Pipeline, bool, error) {
	return models.Pipeline{}, false, nil
}
func (s *stubCache) DeletePipeline(_ string) error                          { return nil }
func (s *stubCache) TryAcquireLock(_ string, _ string, _ int) (bool, error) { return true, nil }
func (s *stubCache) RefreshLock(_ string, _ string, _ int) (bool, error)    { return true, nil }
func (s *stubCache) Close() error                                           { return nil }

var _ cache.ICache = (*stubCache)(nil)

func runRateLimit(c cache.ICache, limit int, request *http.Request) (*httptest.ResponseRecorder, bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})

	recorder := httptest.NewRecorder()
	RateLimit(c, nil, limit)(next).ServeHTTP(recorder, request)
	return recorder, reached
}

func TestRateLimitPassesUnderTheLimit(t *testing.T) {
	c := &stubCache{retryAfter: 0}
	request := httptest.NewRequest(http.MethodPost, "/login_refresh", nil)
	request.RemoteAddr = "203.0.113.9:4242"

	_, reached := runRateLimit(c, 5, request)
	assert.True(t, reached)
	assert.Equal(t, "203.0.113.9", c.askedFor)
}

func TestRateLimitRejectsOverTheLimit(t *testing.T) {
	c := &stubCache{retryAfter: 37}
	request := httptest.NewRequest(http.MethodPost, "/login_refresh", nil)
	request.RemoteAddr = "203.0.113.9:4242"

	recorder, reached := runRateLimit(c, 5, request)
	assert.False(t, reached)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "37", recorder.Header().Get("Retry-After"))
	assert.Contains(t, recorder.Body.String(), "RATE_LIMITED")
}

func TestRateLimitDisabledWithoutCacheOrLimit(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/login_refresh", nil)

	_, reached := runRateLimit(nil, 5, request)
	assert.True(t, reached)

	_, reached = runRateLimit(&stubCache{retryAfter: 99}, 0, request)
	assert.True(t, reached)
}
