package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shimService() AuthService {
	return AuthService{AuthConfig: models.AuthConfig{
		JWTSecret:    "test-secret-key-for-jwt-signing",
		PlatformName: "Open LMS",
	}}
}

func TestShimCoercesLegacyFailureTo400(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":false,"value":"Email or password is incorrect."}`))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(`{}`))

	shimService().shimLegacyHandler(inner, false).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Email or password is incorrect.", recorder.Body.String())
}

func TestShimUnauthenticated403KeepsSentinelBody(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("account isn't linked"))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(`{}`))

	shimService().shimLegacyHandler(inner, true).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, ThirdPartyAuthSentinel, recorder.Body.String())
}

func TestShimForces403WhenNotLoggedIn(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":false,"value":"Email or password is incorrect."}`))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(`{}`))

	shimService().shimLegacyHandler(inner, true).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Email or password is incorrect.", recorder.Body.String())
}

func TestShimSuccessPreservesCookiesAndBaresValue(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "lms_sessionid", Value: "token", MaxAge: 3600})
		http.SetCookie(w, &http.Cookie{Name: "lms_logged_in", Value: "true", MaxAge: 3600})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"value":""}`))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(`{}`))

	shimService().shimLegacyHandler(inner, true).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	cookieNames := map[string]bool{}
	for _, cookie := range recorder.Result().Cookies() {
		cookieNames[cookie.Name] = true
	}
	assert.True(t, cookieNames["lms_sessionid"])
	assert.True(t, cookieNames["lms_logged_in"])
}

func TestShimUnparseableBodyPassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("plain body"))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(`{}`))

	shimService().shimLegacyHandler(inner, false).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "plain body", recorder.Body.String())
}

func TestShimRewritesEnrollmentFields(t *testing.T) {
	var seen map[string]any
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &seen))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"value":""}`))
	})

	body := `{
		"email": "learner@example.com",
		"password": "secret",
		"enrollment_action": "enroll",
		"course_id": "stale-course",
		"analytics": "{\"enroll_course_id\":\"course-v1:ARTS+D1+2018_T\"}"
	}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/user_api/v1/account/login_session/", strings.NewReader(body))

	shimService().shimLegacyHandler(inner, false).ServeHTTP(recorder, request)

	assert.NotContains(t, seen, "enrollment_action")
	assert.Equal(t, "course-v1:ARTS+D1+2018_T", seen["course_id"])
	assert.Equal(t, "learner@example.com", seen["email"])
}
