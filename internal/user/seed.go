package user

import (
	"context"
	"errors"

	"github.com/mehmetcc/flightdesk/internal/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the configured admin account unless a user with that
// e-mail already exists.
func SeedAdmin(ctx context.Context, repo Repo, cfg *config.SeedConfig, logger *zap.Logger) error {
	if cfg == nil || cfg.Email == "" {
		return nil
	}

	_, err := repo.FindByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		logger.Debug("admin account already present", zap.String("email", cfg.Email))
		return nil
	case !errors.Is(err, ErrNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := NewUser(cfg.Email, cfg.Name, string(hash), RoleAdmin)
	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	logger.Info("admin account seeded", zap.String("email", admin.Email))
	return nil
}
