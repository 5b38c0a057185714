package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/internal/configuration"
	"lms/internal/helpers"
	"lms/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key-for-jwt-signing"

func authConfig(preventConcurrent bool) models.AuthConfig {
	return models.AuthConfig{
		JWTSecret: testJWTSecret,
		Features:  models.FeatureConfiguration{PreventConcurrentLogins: preventConcurrent},
	}
}

func requestWithSession(t *testing.T, user *models.User, sessionID string) *http.Request {
	t.Helper()

	token, err := helpers.NewSessionToken(testJWTSecret, user, sessionID)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: configuration.SessionCookieName, Value: token})
	return request
}

func runAuthenticate(t *testing.T, db *gorm.DB, config models.AuthConfig, request *http.Request) bool {
	t.Helper()

	authenticated := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = IsAuthenticated(r.Context())
	})
	Authenticate(db, config)(next).ServeHTTP(httptest.NewRecorder(), request)
	return authenticated
}

func TestAuthenticateAcceptsCurrentSession(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	user := &models.User{ID: uuid.New(), Username: "learner", Email: "learner@example.com"}

	mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "current_session_id"}).
			AddRow(uuid.New(), user.ID, "session-current"))

	request := requestWithSession(t, user, "session-current")
	assert.True(t, runAuthenticate(t, gormDB, authConfig(true), request))
}

func TestAuthenticateRejectsDisplacedSession(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	user := &models.User{ID: uuid.New(), Username: "learner", Email: "learner@example.com"}

	// A newer login wrote a different session id to the profile.
	mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "current_session_id"}).
			AddRow(uuid.New(), user.ID, "session-newer"))

	request := requestWithSession(t, user, "session-older")
	assert.False(t, runAuthenticate(t, gormDB, authConfig(true), request))
}

func TestAuthenticateIgnoresSessionIDWhenFeatureOff(t *testing.T) {
	// The profile table is never consulted when the feature is off.
	user := &models.User{ID: uuid.New(), Username: "learner", Email: "learner@example.com"}
	request := requestWithSession(t, user, "any-session")
	assert.True(t, runAuthenticate(t, nil, authConfig(false), request))
}

func TestAuthenticateTreatsGarbageTokenAsAnonymous(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: configuration.SessionCookieName, Value: "not-a-jwt"})
	assert.False(t, runAuthenticate(t, nil, authConfig(false), request))
}
