package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthLoginBody is the login request. Email and password are optional at the
// struct level because a third-party pipeline login supplies neither; the
// service validates the combination.
type AuthLoginBody struct {
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"omitempty,max=72"`

	// PipelineToken identifies an in-progress third-party handshake.
	PipelineToken string `json:"pipeline_token" validate:"omitempty,max=128"`

	// Analytics is a JSON-encoded object with optional extra fields for the
	// login analytics event (currently only enroll_course_id).
	Analytics string `json:"analytics" validate:"omitempty,max=2048"`

	// CourseID tags the analytics event when the user logs in while
	// enrolling in a course.
	CourseID         string `json:"course_id"         validate:"omitempty,max=255"`
	EnrollmentAction string `json:"enrollment_action" validate:"omitempty,max=64"`
}

// LoginOutcome is the legacy login response contract: always serialized at
// status 200 by the direct endpoint unless the 400-on-error rollout flag is
// enabled. Never persisted.
type LoginOutcome struct {
	Success     bool   `json:"success"`
	Value       string `json:"value"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Pipeline is the in-progress third-party-authentication handshake state,
// carried across redirects in the cache.
type Pipeline struct {
	Provider string `json:"provider"`
	Backend  string `json:"backend"`
	UID      string `json:"uid"`
	Username string `json:"username"`

	// CompleteURL is where the client is redirected once the pipeline user
	// is logged in.
	CompleteURL string `json:"complete_url"`
}

// SessionClaims are the claims stored in the session JWT cookie.
type SessionClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	Issuer    string    `json:"iss"`
	jwt.RegisteredClaims
}

// SessionClaimKey is the context key under which middleware stores the
// authenticated session claims.
type SessionClaimKey struct{}

// LogoutContext is the payload rendered by the logout page for client-side
// relying-party fan-out.
type LogoutContext struct {
	Target           string   `json:"target"`
	LogoutURIs       []string `json:"logout_uris"`
	EnterpriseTarget bool     `json:"enterprise_target"`
}
