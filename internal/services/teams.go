package services

import (
	"errors"
	"fmt"

	"lms/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotEnrolled is returned when a protection-status check is asked about a
// learner with no active enrollment in the course.
var ErrNotEnrolled = errors.New("user is not enrolled in the course")

// OrganizationProtectionStatus classifies a learner's relationship to the
// organization bubble of a course. Staff are exempt, masters-track learners
// are protected and stay in exclusive teams, everyone else is unprotected.
type OrganizationProtectionStatus string

const (
	OrgProtected        OrganizationProtectionStatus = "org_protected"
	OrgProtectionExempt OrganizationProtectionStatus = "org_protection_exempt"
	OrgUnprotected      OrganizationProtectionStatus = "org_unprotected"
)

func (s OrganizationProtectionStatus) IsProtected() bool {
	return s == OrgProtected
}

func (s OrganizationProtectionStatus) IsExempt() bool {
	return s == OrgProtectionExempt
}

// organizationProtectedModes lists the enrollment modes whose learners must
// be kept in protected teams.
var organizationProtectedModes = map[string]bool{
	models.EnrollmentModeMasters: true,
}

// TeamsService is the programmatic teams surface other components consume:
// discussion-to-team resolution, membership checks and the organization
// protection rules. It exposes no routes of its own.
type TeamsService struct {
	DB *gorm.DB
}

// GetTeamByDiscussion resolves the team owning a discussion topic. A nil team
// with a nil error means the discussion belongs to no team and is visible in
// any team context.
func (s TeamsService) GetTeamByDiscussion(discussionID string) (*models.CourseTeam, error) {
	var team models.CourseTeam
	result := s.DB.Where("discussion_topic_id = ?", discussionID).First(&team)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading team for discussion: %w", result.Error)
	}
	return &team, nil
}

// UserIsTeamMember reports whether the user belongs to the team. A nil team
// has no members.
func (s TeamsService) UserIsTeamMember(userID uuid.UUID, team *models.CourseTeam) (bool, error) {
	if team == nil {
		return false, nil
	}

	var count int64
	result := s.DB.Model(&models.CourseTeamMembership{}).
		Where("team_id = ? AND user_id = ?", team.ID, userID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("checking team membership: %w", result.Error)
	}
	return count > 0, nil
}

// DiscussionVisibleByUser reports whether the user may see a discussion. The
// discussion is hidden only when it belongs to a team that keeps its
// discussion private and the user is not a member.
func (s TeamsService) DiscussionVisibleByUser(discussionID string, userID uuid.UUID) (bool, error) {
	team, err := s.GetTeamByDiscussion(discussionID)
	if err != nil {
		return false, err
	}
	if team == nil || !team.IsDiscussionPrivate {
		return true, nil
	}
	return s.UserIsTeamMember(userID, team)
}

// HasCourseStaffPrivileges reports whether the user administers the course,
// either through the global staff flag or a per-course staff or instructor
// role.
func (s TeamsService) HasCourseStaffPrivileges(user *models.User, courseID string) (bool, error) {
	if user.IsStaff {
		return true, nil
	}

	var count int64
	result := s.DB.Model(&models.CourseAccessRole{}).
		Where("user_id = ? AND course_id = ? AND role IN ?",
			user.ID, courseID, []string{models.CourseRoleStaff, models.CourseRoleInstructor}).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("checking course roles: %w", result.Error)
	}
	return count > 0, nil
}

// UserOrganizationProtectionStatus returns the protection status of the user
// in the course. Asking about a user with no active enrollment is a caller
// error and returns ErrNotEnrolled.
func (s TeamsService) UserOrganizationProtectionStatus(
	user *models.User,
	courseID string,
) (OrganizationProtectionStatus, error) {
	staff, err := s.HasCourseStaffPrivileges(user, courseID)
	if err != nil {
		return "", err
	}
	if staff {
		return OrgProtectionExempt, nil
	}

	var enrollment models.CourseEnrollment
	result := s.DB.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&enrollment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotEnrolled
		}
		return "", fmt.Errorf("loading enrollment: %w", result.Error)
	}
	if !enrollment.IsActive {
		return "", ErrNotEnrolled
	}

	if organizationProtectedModes[enrollment.Mode] {
		return OrgProtected, nil
	}
	return OrgUnprotected, nil
}

// HasSpecificTeamAccess reports whether the user may interact with the team.
// Staff always may; otherwise the user's protection bubble must match the
// team's.
func (s TeamsService) HasSpecificTeamAccess(user *models.User, team *models.CourseTeam) (bool, error) {
	status, err := s.UserOrganizationProtectionStatus(user, team.CourseID)
	if err != nil {
		return false, err
	}
	if status.IsExempt() {
		return true, nil
	}
	if team.OrganizationProtected {
		return status.IsProtected(), nil
	}
	return status == OrgUnprotected, nil
}

// TeamCountsByTopic returns the number of teams per topic in a course, seen
// from the given protection bubble. Exempt callers see every team; everyone
// else only counts teams in their own bubble.
func (s TeamsService) TeamCountsByTopic(
	courseID string,
	topicIDs []string,
	status OrganizationProtectionStatus,
) (map[string]int64, error) {
	query := s.DB.Model(&models.CourseTeam{}).
		Where("course_id = ? AND topic_id IN ?", courseID, topicIDs)
	if !status.IsExempt() {
		query = query.Where("organization_protected = ?", status.IsProtected())
	}

	var rows []struct {
		TopicID string
		Total   int64
	}
	result := query.Select("topic_id, count(*) as total").Group("topic_id").Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("counting teams per topic: %w", result.Error)
	}

	counts := make(map[string]int64, len(topicIDs))
	for _, topicID := range topicIDs {
		counts[topicID] = 0
	}
	for _, row := range rows {
		counts[row.TopicID] = row.Total
	}
	return counts, nil
}

// CanModifyTeam reports whether the user may change the team's membership.
// Instructor-managed teams are reserved for course staff; self-organized
// teams are open to their enrolled members.
func (s TeamsService) CanModifyTeam(user *models.User, team *models.CourseTeam) (bool, error) {
	if !s.isInstructorManaged(team) {
		return true, nil
	}
	return s.HasCourseStaffPrivileges(user, team.CourseID)
}

// isInstructorManaged reports whether membership of the team is controlled
// by instructors. No team carries the flag yet; the accessor keeps the
// permission checks in one shape for when it lands.
func (s TeamsService) isInstructorManaged(_ *models.CourseTeam) bool {
	return false
}
