package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func scheduleRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "course_id", "day_of_week", "start_time", "end_time", "room", "created_at", "updated_at"}).
		AddRow("b1", "c1", "Monday", "09:00", "10:00", "B204", now, now).
		AddRow("b2", "c1", "Wednesday", "13:00", "14:30", "B204", now, now)
}

func TestScheduleListByTeacherPreservesCreationOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.created_at ASC, s.id ASC")).
		WithArgs("teacher-1").
		WillReturnRows(scheduleRows(now))

	blocks, err := repo.ListByTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "b1", blocks[0].ID)
	assert.Equal(t, "b2", blocks[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleListFiltersByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT s.id, s.course_id").
		WithArgs("teacher-1").
		WillReturnRows(scheduleRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	blocks, total, err := repo.List(context.Background(), models.ScheduleFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedule_blocks").WillReturnResult(sqlmock.NewResult(1, 1))

	block := &models.ScheduleBlock{CourseID: "c1", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, repo.Create(context.Background(), block))
	assert.NotEmpty(t, block.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("DELETE FROM schedule_blocks").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
