package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"lms/internal/configuration"
	m "lms/internal/middlewares"
	"lms/internal/models"

	"go.uber.org/zap"
)

// ThirdPartyAuthSentinel is the body returned by the shimmed endpoint when an
// unauthenticated third-party attempt comes back as 403, so clients can
// distinguish an unlinked provider from a plain credential failure.
const ThirdPartyAuthSentinel = "third-party-auth"

// HandleLoginSession is the shimmed login endpoint consumed by newer
// frontends: same credential checks as the legacy endpoint, but the
// 200-with-flag contract is translated into real status codes and a bare
// message body.
func (s AuthService) HandleLoginSession(w http.ResponseWriter, r *http.Request) {
	inner := m.Validate[models.AuthLoginBody](http.HandlerFunc(s.HandleLogin))
	s.shimLegacyHandler(inner, true).ServeHTTP(w, r)
}

// shimLegacyHandler wraps a legacy handler. The request is rewritten before
// the inner handler runs and the inner response is translated afterwards.
// Every inner header survives the translation, cookies included.
func (s AuthService) shimLegacyHandler(inner http.Handler, checkLoggedIn bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zap.L().With(zap.String("path", r.URL.Path))

		rewriteLegacyBody(logger, r)

		recorder := newResponseRecorder()
		inner.ServeHTTP(recorder, r)

		success, value, parsed := parseLegacyBody(recorder.body.Bytes())

		for name, values := range recorder.header {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}

		loggedIn := m.IsAuthenticated(r.Context()) || recorder.setsSessionCookie()

		switch {
		case checkLoggedIn && !loggedIn:
			// An unlinked third-party attempt already comes back as 403;
			// keep the status and replace the body with the sentinel so the
			// client can branch on it.
			if recorder.status == http.StatusForbidden {
				writeShimBody(w, http.StatusForbidden, ThirdPartyAuthSentinel)
				return
			}
			writeShimBody(w, http.StatusForbidden, value)

		case recorder.status != http.StatusOK || (parsed && !success):
			status := recorder.status
			if status == http.StatusOK {
				status = http.StatusBadRequest
			}
			writeShimBody(w, status, value)

		default:
			writeShimBody(w, http.StatusOK, value)
		}
	}
}

// rewriteLegacyBody strips the enrollment fields newer clients still send and
// promotes analytics.enroll_course_id into course_id. Parse failures are
// logged and swallowed; the inner handler sees the body unchanged then.
func rewriteLegacyBody(logger *zap.Logger, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("Failed to read login body for rewrite", zap.Error(err))
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Warn("Failed to parse login body for rewrite", zap.Error(err))
		r.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	delete(fields, "enrollment_action")
	delete(fields, "course_id")

	if analytics, ok := fields["analytics"].(string); ok && analytics != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(analytics), &parsed); err != nil {
			logger.Warn("Failed to parse analytics field", zap.Error(err))
		} else if courseID, ok := parsed["enroll_course_id"].(string); ok && courseID != "" {
			fields["course_id"] = courseID
		}
	}

	rewritten, err := json.Marshal(fields)
	if err != nil {
		logger.Warn("Failed to re-encode login body", zap.Error(err))
		r.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(rewritten))
	r.ContentLength = int64(len(rewritten))
	r.Header.Set("Content-Length", strconv.Itoa(len(rewritten)))
}

// parseLegacyBody decodes a {success, value} payload. An unparseable body is
// treated as an already-shimmed success carrying its raw content.
func parseLegacyBody(body []byte) (success bool, value string, parsed bool) {
	var legacy struct {
		Success *bool  `json:"success"`
		Value   string `json:"value"`
	}
	if err := json.Unmarshal(body, &legacy); err != nil || legacy.Success == nil {
		return true, string(body), false
	}
	return *legacy.Success, legacy.Value, true
}

func writeShimBody(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// responseRecorder captures the inner handler's response so the shim can
// translate it before anything reaches the client.
type responseRecorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{status: http.StatusOK, header: http.Header{}}
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }

func (r *responseRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *responseRecorder) setsSessionCookie() bool {
	for _, raw := range r.header.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(raw)
		if err != nil {
			continue
		}
		if cookie.Name == configuration.SessionCookieName && cookie.MaxAge > 0 {
			return true
		}
	}
	return false
}
