package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "name", "email", "major", "gpa", "credit_hours"}).
		AddRow("stu-1", "Lina", "lina@uni.edu", "CS", 3.4, 12)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, name, email, major, gpa, credit_hours FROM students WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, 12, student.CreditHours)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeductCreditHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET credit_hours = credit_hours - $2")).
		WithArgs("stu-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.DeductCreditHours(context.Background(), "stu-1", 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeductCreditHoursInsufficient(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET credit_hours = credit_hours - $2")).
		WithArgs("stu-1", 30).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeductCreditHours(context.Background(), "stu-1", 30)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
