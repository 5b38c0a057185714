package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the platform identity record. Registration lives outside this
// service; the auth flow only reads credentials and updates last_login.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username       string     `gorm:"uniqueIndex;not null"                           json:"username"`
	Email          string     `gorm:"uniqueIndex;not null"                           json:"email"`
	HashedPassword string     `gorm:"not null"                                       json:"-"`
	IsActive       bool       `gorm:"default:false"                                  json:"is_active"`
	IsStaff        bool       `gorm:"default:false"                                  json:"is_staff"`
	LastLogin      *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EmailDomain returns the lower-cased domain part of the user's email, or ""
// when the address has no @.
func (u *User) EmailDomain() string {
	_, domain, found := strings.Cut(u.Email, "@")
	if !found {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

// UserProfile carries per-user mutable session bookkeeping. CurrentSessionID
// records the most recent login session when concurrent-login prevention is
// enabled; requests bearing an older session id are treated as anonymous.
type UserProfile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"                 json:"user_id"`
	User             *User     `gorm:"foreignKey:UserID"                              json:"-"`
	Name             string    `json:"name"`
	CurrentSessionID string    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginFailures tracks consecutive failed login attempts per user. The
// counter is read-then-written without row locking; concurrent attempts may
// under- or over-count. That is the accepted best-effort policy.
type LoginFailures struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"                 json:"user_id"`
	FailureCount int        `gorm:"default:0"                                      json:"failure_count"`
	LockoutUntil *time.Time `json:"lockout_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLockedOut reports whether the account is currently blocked, given the
// configured failure threshold.
func (f *LoginFailures) IsLockedOut(maxFailures int, now time.Time) bool {
	if f == nil {
		return false
	}
	return f.FailureCount >= maxFailures &&
		f.LockoutUntil != nil && now.Before(*f.LockoutUntil)
}

// AllowedAuthUser exempts an email on a given site from the domain-wide
// SSO-only login policy. Read-only from the login flow's perspective.
type AllowedAuthUser struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Site  string    `gorm:"index:idx_allowed_auth_site_email,unique"       json:"site"`
	Email string    `gorm:"index:idx_allowed_auth_site_email,unique"       json:"email"`

	CreatedAt time.Time `json:"created_at"`
}

// ThirdPartyLink associates an external provider identity with a local user.
// Created when a user links accounts from their dashboard; the login flow
// only looks links up.
type ThirdPartyLink struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Provider string    `gorm:"index:idx_tpl_provider_uid,unique;not null"     json:"provider"`
	UID      string    `gorm:"index:idx_tpl_provider_uid,unique;not null"     json:"uid"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null"                       json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID"                              json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// RelyingParty is a registered downstream application whose logout endpoint
// participates in the logout fan-out.
type RelyingParty struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID  string    `gorm:"uniqueIndex;not null"                           json:"client_id"`
	Name      string    `json:"name"`
	LogoutURI string    `json:"logout_uri"`

	CreatedAt time.Time `json:"created_at"`
}

// StudentModule holds per-learner state for a courseware block, stored as a
// JSON document.
type StudentModule struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"id"`
	StudentUsername string    `gorm:"index:idx_student_module_key,unique;not null"     json:"student_username"`
	ModuleStateKey  string    `gorm:"index:idx_student_module_key,unique;not null"     json:"module_state_key"`
	State           string    `gorm:"type:text"                                        json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
