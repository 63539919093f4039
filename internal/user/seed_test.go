package user

import (
	"context"
	"testing"

	"github.com/mehmetcc/flightdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	users map[string]*User
	next  int64
}

func (m *memRepo) FindEnabledByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[NormalizeEmail(email)]
	if !ok || !u.Enabled {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	m.next++
	u.ID = m.next
	m.users[u.Email] = u
	return nil
}

func (m *memRepo) Save(_ context.Context, u *User) error {
	m.users[u.Email] = u
	return nil
}

func TestSeedAdmin(t *testing.T) {
	repo := &memRepo{users: map[string]*User{}}
	cfg := &config.SeedConfig{Email: "Admin@FlightDesk.io", Password: "s3cret-pass", Name: "Admin"}

	require.NoError(t, SeedAdmin(context.Background(), repo, cfg, zap.NewNop()))
	require.NoError(t, SeedAdmin(context.Background(), repo, cfg, zap.NewNop()))

	require.Len(t, repo.users, 1)
	admin := repo.users["admin@flightdesk.io"]
	require.NotNil(t, admin)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.True(t, admin.Enabled)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret-pass")))
}

func TestSeedAdmin_Disabled(t *testing.T) {
	repo := &memRepo{users: map[string]*User{}}
	require.NoError(t, SeedAdmin(context.Background(), repo, &config.SeedConfig{}, zap.NewNop()))
	assert.Empty(t, repo.users)
}
