package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mehmetcc/flightdesk/internal/config"
	"github.com/mehmetcc/flightdesk/internal/token"
	"github.com/mehmetcc/flightdesk/internal/user"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	next    int64
	saves   int
	failErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*user.User{}}
}

func (m *memUsers) add(t *testing.T, email, name, password string, role user.Role, enabled bool) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := user.NewUser(email, name, string(hash), role)
	u.Enabled = enabled
	require.NoError(t, m.Create(context.Background(), u))
	return u
}

func (m *memUsers) FindEnabledByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := m.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.Enabled {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrDuplicateEmail
	}
	m.next++
	u.ID = m.next
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) Save(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; !ok {
		return user.ErrNotFound
	}
	m.saves++
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) setEnabled(email string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[email].Enabled = enabled
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]time.Time{}}
}

func (d *memDenylist) Revoke(_ context.Context, id string, exp time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = exp
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string, now time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[id]
	return ok && now.Before(exp), nil
}

func (d *memDenylist) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, errors.New("not used")
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newCodec(clk *fakeClock) token.Codec {
	return token.NewCodec(&config.JWTConfig{Secret: testSecret, TTL: time.Hour}, zap.NewNop(), token.WithClock(clk.Now))
}
