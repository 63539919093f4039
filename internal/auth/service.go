package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/token"
	"github.com/mehmetcc/flightdesk/internal/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token string       `json:"token"`
	User  user.Summary `json:"user"`
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, tokenString string) error
	CurrentUser(ctx context.Context, email string) (*user.Summary, error)
	Register(ctx context.Context, email, name, password string) (*user.Summary, error)
}

type Option func(*sessionService)

// WithDenylist turns logout into a real revocation.
func WithDenylist(dl token.Denylist) Option {
	return func(s *sessionService) {
		s.denylist = dl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *sessionService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *sessionService) {
		s.now = now
	}
}

// WithHashCost sets the bcrypt cost used by Register.
func WithHashCost(cost int) Option {
	return func(s *sessionService) {
		s.hashCost = cost
	}
}

type sessionService struct {
	users    user.Repo
	codec    token.Codec
	denylist token.Denylist
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	hashCost int
}

func NewSessionService(users user.Repo, codec token.Codec, logger *zap.Logger, opts ...Option) SessionService {
	s := &sessionService{
		users:    users,
		codec:    codec,
		logger:   logger,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindEnabledByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.logger.Debug("login for unknown or disabled user", zap.String("email", email))
			s.metrics.Login(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", zap.Int64("user_id", u.ID))
		s.metrics.Login(false)
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	u.LastLogin = &now
	if err := s.users.Save(ctx, u); err != nil {
		s.logger.Error("failed to record last login", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	tok, err := s.codec.Issue(u.Email, strconv.FormatInt(u.ID, 10), u.Role, u.Name)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	s.metrics.Login(true)
	s.logger.Info("user logged in", zap.Int64("user_id", u.ID))
	return &LoginResult{Token: tok, User: u.Summary()}, nil
}

// Logout only checks the token unless a denylist is configured, in which case
// the token id stays revoked until the token would have expired anyway.
func (s *sessionService) Logout(ctx context.Context, tokenString string) error {
	if !s.codec.Validate(tokenString) {
		return ErrInvalidToken
	}
	if s.denylist == nil {
		return nil
	}

	claims, err := s.codec.Parse(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.ID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		s.logger.Error("failed to revoke token", zap.Error(err))
		return err
	}
	s.logger.Debug("token revoked", zap.String("subject", claims.Subject))
	return nil
}

func (s *sessionService) CurrentUser(ctx context.Context, email string) (*user.Summary, error) {
	u, err := s.users.FindEnabledByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserUnavailable
		}
		return nil, err
	}
	sum := u.Summary()
	return &sum, nil
}

func (s *sessionService) Register(ctx context.Context, email, name, password string) (*user.Summary, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := user.NewUser(email, name, string(hashed), user.RoleUser)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	sum := u.Summary()
	return &sum, nil
}
