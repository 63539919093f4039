package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var userColumns = []string{"id", "email", "name", "password", "role", "enabled", "last_login", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db, zap.NewNop()), mock
}

func TestUserRepo_FindEnabledByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 AND enabled = TRUE")).
		WithArgs("admin@flightdesk.io").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(7), "admin@flightdesk.io", "Admin", "hash", "ADMIN", true, now, now, now))

	u, err := repo.FindEnabledByEmail(context.Background(), "  Admin@FlightDesk.io ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, RoleAdmin, u.Role)
	require.NotNil(t, u.LastLogin)
	assert.True(t, now.Equal(*u.LastLogin))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindEnabledByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost@flightdesk.io").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindEnabledByEmail(context.Background(), "ghost@flightdesk.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("new@flightdesk.io", "New", "hash", "USER", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))

	u := NewUser("New@flightdesk.io", "New", "hash", RoleUser)
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(12), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), NewUser("dup@flightdesk.io", "Dup", "hash", RoleUser))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepo_Save(t *testing.T) {
	repo, mock := newMockRepo(t)
	login := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(3), "Jane", "USER", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &User{ID: 3, Name: "Jane", Role: RoleUser, Enabled: true, LastLogin: &login}
	require.NoError(t, repo.Save(context.Background(), u))
	assert.False(t, u.UpdatedAt.IsZero())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Save(context.Background(), &User{ID: 99, Role: RoleUser}), ErrNotFound)
}
