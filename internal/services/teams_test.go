package services

import (
	"testing"

	"lms/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamColumns() []string {
	return []string{
		"id", "course_id", "topic_id", "discussion_topic_id",
		"name", "is_discussion_private", "organization_protected",
	}
}

func expectTeamByDiscussion(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT \* FROM "course_teams" WHERE discussion_topic_id = \$1`).
		WillReturnRows(rows)
}

func TestGetTeamByDiscussionUnowned(t *testing.T) {
	gormDB, mock, closeDB := newMockDB(t)
	defer closeDB()
	service := TeamsService{DB: gormDB}

	expectTeamByDiscussion(mock, sqlmock.NewRows(teamColumns()))

	team, err := service.GetTeamByDiscussion("general-chat")
	require.NoError(t, err)
	assert.Nil(t, team)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscussionVisibility(t *testing.T) {
	courseID := "course-v1:ARTS+D1+2018_T"

	t.Run("private team hides from non-members", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		teamID := uuid.New()
		expectTeamByDiscussion(mock, sqlmock.NewRows(teamColumns()).
			AddRow(teamID, courseID, "sculpture", "team-disc-1", "Clay Crew", true, false))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_team_memberships"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		visible, err := service.DiscussionVisibleByUser("team-disc-1", uuid.New())
		require.NoError(t, err)
		assert.False(t, visible)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("private team shows to members", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		teamID := uuid.New()
		expectTeamByDiscussion(mock, sqlmock.NewRows(teamColumns()).
			AddRow(teamID, courseID, "sculpture", "team-disc-1", "Clay Crew", true, false))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_team_memberships"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		visible, err := service.DiscussionVisibleByUser("team-disc-1", uuid.New())
		require.NoError(t, err)
		assert.True(t, visible)
	})

	t.Run("open discussion needs no membership", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		expectTeamByDiscussion(mock, sqlmock.NewRows(teamColumns()).
			AddRow(uuid.New(), courseID, "sculpture", "team-disc-1", "Clay Crew", false, false))

		visible, err := service.DiscussionVisibleByUser("team-disc-1", uuid.New())
		require.NoError(t, err)
		assert.True(t, visible)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserOrganizationProtectionStatus(t *testing.T) {
	courseID := "course-v1:ARTS+D1+2018_T"

	t.Run("global staff is exempt", func(t *testing.T) {
		gormDB, _, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		status, err := service.UserOrganizationProtectionStatus(
			&models.User{ID: uuid.New(), IsStaff: true}, courseID)
		require.NoError(t, err)
		assert.Equal(t, OrgProtectionExempt, status)
		assert.True(t, status.IsExempt())
	})

	t.Run("masters track is protected", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		userID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_access_roles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "course_enrollments" WHERE user_id = \$1 AND course_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "mode", "is_active"}).
				AddRow(uuid.New(), userID, courseID, models.EnrollmentModeMasters, true))

		status, err := service.UserOrganizationProtectionStatus(
			&models.User{ID: userID}, courseID)
		require.NoError(t, err)
		assert.Equal(t, OrgProtected, status)
		assert.True(t, status.IsProtected())
	})

	t.Run("audit track is unprotected", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		userID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_access_roles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "course_enrollments" WHERE user_id = \$1 AND course_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "mode", "is_active"}).
				AddRow(uuid.New(), userID, courseID, models.EnrollmentModeAudit, true))

		status, err := service.UserOrganizationProtectionStatus(
			&models.User{ID: userID}, courseID)
		require.NoError(t, err)
		assert.Equal(t, OrgUnprotected, status)
	})

	t.Run("unenrolled user is an error", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_access_roles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "course_enrollments" WHERE user_id = \$1 AND course_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "mode", "is_active"}))

		_, err := service.UserOrganizationProtectionStatus(
			&models.User{ID: uuid.New()}, courseID)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})
}

func TestHasSpecificTeamAccess(t *testing.T) {
	courseID := "course-v1:ARTS+D1+2018_T"
	protectedTeam := &models.CourseTeam{
		ID:                    uuid.New(),
		CourseID:              courseID,
		OrganizationProtected: true,
	}

	t.Run("protected learner joins protected team", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		userID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_access_roles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "course_enrollments" WHERE user_id = \$1 AND course_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "mode", "is_active"}).
				AddRow(uuid.New(), userID, courseID, models.EnrollmentModeMasters, true))

		allowed, err := service.HasSpecificTeamAccess(&models.User{ID: userID}, protectedTeam)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("unprotected learner stays out of protected team", func(t *testing.T) {
		gormDB, mock, closeDB := newMockDB(t)
		defer closeDB()
		service := TeamsService{DB: gormDB}

		userID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "course_access_roles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "course_enrollments" WHERE user_id = \$1 AND course_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "mode", "is_active"}).
				AddRow(uuid.New(), userID, courseID, models.EnrollmentModeVerified, true))

		allowed, err := service.HasSpecificTeamAccess(&models.User{ID: userID}, protectedTeam)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestTeamCountsByTopic(t *testing.T) {
	gormDB, mock, closeDB := newMockDB(t)
	defer closeDB()
	service := TeamsService{DB: gormDB}

	mock.ExpectQuery(`SELECT topic_id, count\(\*\) as total FROM "course_teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"topic_id", "total"}).
			AddRow("sculpture", 3))

	counts, err := service.TeamCountsByTopic(
		"course-v1:ARTS+D1+2018_T",
		[]string{"sculpture", "painting"},
		OrgUnprotected,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["sculpture"])

	// Topics with no teams still appear with a zero count.
	assert.Equal(t, int64(0), counts["painting"])
	require.NoError(t, mock.ExpectationsWereMet())
}
