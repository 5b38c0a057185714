package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment tracks a learner enrolled in a course run. Masters-track
// learners belong to an organization and are kept in protected teams.
const (
	EnrollmentModeAudit    = "audit"
	EnrollmentModeVerified = "verified"
	EnrollmentModeMasters  = "masters"
)

type CourseEnrollment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index:idx_enrollment_user_course,unique;not null" json:"user_id"`
	CourseID string    `gorm:"index:idx_enrollment_user_course,unique;not null"           json:"course_id"`
	Mode     string    `gorm:"not null"                                                   json:"mode"`
	IsActive bool      `gorm:"default:true"                                               json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseAccessRole grants a per-course elevated role, such as staff or
// instructor. Global staff is a flag on the user record instead.
type CourseAccessRole struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"       json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index:idx_access_role_key,unique;not null"  json:"user_id"`
	CourseID string    `gorm:"index:idx_access_role_key,unique;not null"            json:"course_id"`
	Role     string    `gorm:"index:idx_access_role_key,unique;not null"            json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	CourseRoleStaff      = "staff"
	CourseRoleInstructor = "instructor"
)

// CourseTeam is a learner team inside a course run. Each team may own a
// discussion topic; a protected team only admits organization learners.
type CourseTeam struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID              string    `gorm:"index;not null"                                 json:"course_id"`
	TopicID               string    `gorm:"index"                                          json:"topic_id"`
	DiscussionTopicID     string    `gorm:"uniqueIndex"                                    json:"discussion_topic_id"`
	Name                  string    `json:"name"`
	IsDiscussionPrivate   bool      `gorm:"default:false" json:"is_discussion_private"`
	OrganizationProtected bool      `gorm:"default:false" json:"organization_protected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseTeamMembership links a user to a team.
type CourseTeamMembership struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"       json:"id"`
	TeamID uuid.UUID `gorm:"type:uuid;index:idx_team_membership,unique;not null"  json:"team_id"`
	UserID uuid.UUID `gorm:"type:uuid;index:idx_team_membership,unique;not null"  json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}
