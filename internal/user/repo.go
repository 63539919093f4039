package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Repo is the persistence collaborator of the session service.
type Repo interface {
	FindEnabledByEmail(ctx context.Context, email string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
}

type userRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &userRepo{
		db:     db,
		logger: logger,
	}
}

const (
	selectUserColumns = `id, email, name, password, role, enabled, last_login, created_at, updated_at`

	findEnabledByEmailQuery = `
						SELECT ` + selectUserColumns + `
						FROM users
						WHERE email = $1 AND enabled = TRUE
						`
	findByEmailQuery = `
						SELECT ` + selectUserColumns + `
						FROM users
						WHERE email = $1
						`
	insertUserQuery = `
						INSERT INTO users (email, name, password, role, enabled)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, created_at, updated_at
						`
	updateUserQuery = `
						UPDATE users
						SET name = $2, role = $3, enabled = $4, last_login = $5, updated_at = $6
						WHERE id = $1
						`
)

func (r *userRepo) FindEnabledByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, findEnabledByEmailQuery, NormalizeEmail(email))
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, findByEmailQuery, NormalizeEmail(email))
}

func (r *userRepo) findOne(ctx context.Context, query, email string) (*User, error) {
	var (
		u         User
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Enabled,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to load user", zap.Error(err))
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	row := r.db.QueryRowContext(ctx, insertUserQuery,
		NormalizeEmail(u.Email),
		u.Name,
		u.PasswordHash,
		u.Role,
		u.Enabled,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			r.logger.Warn("create user canceled/timed out", zap.Error(err))
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Debug("duplicate email", zap.String("email", u.Email))
			return ErrDuplicateEmail
		}

		r.logger.Error("failed to insert user", zap.Error(err))
		return err
	}

	r.logger.Debug("user created", zap.Int64("id", u.ID))
	return nil
}

// Save persists the mutable fields of u. It is used after login to record
// the last login time.
func (r *userRepo) Save(ctx context.Context, u *User) error {
	var lastLogin sql.NullTime
	if u.LastLogin != nil {
		lastLogin = sql.NullTime{Time: u.LastLogin.UTC(), Valid: true}
	}
	u.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, updateUserQuery,
		u.ID,
		u.Name,
		u.Role,
		u.Enabled,
		lastLogin,
		u.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to update user", zap.Int64("id", u.ID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
