package token

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// Denylist records tokens revoked before their natural expiry. It is an
// optional capability: without one, logout only checks the token.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

const (
	revokeTokenQuery = `
						INSERT INTO revoked_tokens (token_id, expires_at)
						VALUES ($1, $2)
						ON CONFLICT (token_id) DO NOTHING
						`
	isRevokedQuery = `
						SELECT EXISTS (
							SELECT 1 FROM revoked_tokens
							WHERE token_id = $1 AND expires_at > $2
						)
						`
	purgeExpiredQuery = `
						DELETE FROM revoked_tokens WHERE expires_at <= $1
						`
)

type denylistRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDenylistRepo(db *sql.DB, logger *zap.Logger) Denylist {
	return &denylistRepo{db: db, logger: logger}
}

func (r *denylistRepo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, revokeTokenQuery, tokenID, expiresAt.UTC())
	if err != nil {
		r.logger.Error("failed to revoke token", zap.String("jti", tokenID), zap.Error(err))
	}
	return err
}

func (r *denylistRepo) IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error) {
	var revoked bool
	if err := r.db.QueryRowContext(ctx, isRevokedQuery, tokenID, now.UTC()).Scan(&revoked); err != nil {
		r.logger.Error("failed to look up revoked token", zap.String("jti", tokenID), zap.Error(err))
		return false, err
	}
	return revoked, nil
}

func (r *denylistRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeExpiredQuery, now.UTC())
	if err != nil {
		r.logger.Error("failed to purge revoked tokens", zap.Error(err))
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.logger.Debug("purged revoked tokens", zap.Int64("count", n))
	}
	return n, nil
}

// RunPurger deletes expired denylist entries every interval until ctx is done.
func RunPurger(ctx context.Context, dl Denylist, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if _, err := dl.PurgeExpired(ctx, t); err != nil {
				logger.Warn("denylist purge failed", zap.Error(err))
			}
		}
	}
}
