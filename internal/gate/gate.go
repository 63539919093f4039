// Package gate is the authentication chokepoint in front of every handler.
//
// For each request the gate classifies the path; public paths pass through
// untouched. Protected paths need an "Authorization: Bearer <token>" header
// carrying a valid token, otherwise the gate answers 401 and the handler
// never runs. On success the caller's Identity is put in the request context.
package gate

import (
	"net/http"
	"strings"
	"time"

	"github.com/mehmetcc/flightdesk/internal/endpoint"
	"github.com/mehmetcc/flightdesk/internal/httpx"
	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/token"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

type Gate struct {
	codec    token.Codec
	rules    *endpoint.Rules
	denylist token.Denylist
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Gate)

// WithDenylist makes the gate reject tokens revoked at logout.
func WithDenylist(dl token.Denylist) Option {
	return func(g *Gate) {
		g.denylist = dl
	}
}

// WithClock sets the time used for denylist lookups. It should match the
// codec's clock.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(codec token.Codec, rules *endpoint.Rules, logger *zap.Logger, opts ...Option) *Gate {
	g := &Gate{
		codec:  codec,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// A missing header or any other scheme yields "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return h[len(bearerPrefix):]
}

func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if g.rules.IsPublic(path) {
			g.logger.Debug("public endpoint", zap.String("path", path))
			g.metrics.Gate(metrics.OutcomePublic)
			next.ServeHTTP(w, r)
			return
		}

		raw := BearerToken(r)
		g.logger.Debug("protected endpoint",
			zap.String("path", path),
			zap.Bool("token_present", raw != ""),
		)

		if raw == "" || !g.codec.Validate(raw) {
			g.reject(w, path)
			return
		}

		claims, err := g.codec.Parse(raw)
		if err != nil {
			// Validate accepted the token, so this is not the caller's fault.
			g.logger.Error("validated token failed to parse", zap.String("path", path), zap.Error(err))
			g.metrics.Gate(metrics.OutcomeError)
			httpx.WriteFailure(w, http.StatusInternalServerError, httpx.MsgInternalError)
			return
		}

		if g.denylist != nil && claims.ID != "" {
			revoked, err := g.denylist.IsRevoked(r.Context(), claims.ID, g.now())
			if err != nil {
				g.logger.Error("denylist lookup failed", zap.Error(err))
				g.metrics.Gate(metrics.OutcomeError)
				httpx.WriteFailure(w, http.StatusInternalServerError, httpx.MsgInternalError)
				return
			}
			if revoked {
				g.reject(w, path)
				return
			}
		}

		id := Identity{
			Subject:     claims.Subject,
			UserID:      claims.UserID,
			Role:        claims.Role,
			DisplayName: claims.DisplayName,
		}
		g.metrics.Gate(metrics.OutcomeAuthenticated)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, path string) {
	g.logger.Warn("invalid or missing token", zap.String("path", path))
	g.metrics.Gate(metrics.OutcomeRejected)
	httpx.WriteFailure(w, http.StatusUnauthorized, httpx.MsgInvalidToken)
}
