package gate

import (
	"net/http"

	"github.com/mehmetcc/flightdesk/internal/httpx"
	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/user"
	"go.uber.org/zap"
)

// RequireRole only lets through requests whose identity holds required.
// It must run behind the gate: a request without identity gets 401, a
// request with the wrong role gets 403.
func RequireRole(required user.Role, logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteFailure(w, http.StatusUnauthorized, httpx.MsgInvalidToken)
				return
			}
			if !user.Authorize(id.Role, required) {
				logger.Warn("role requirement not met",
					zap.String("path", r.URL.Path),
					zap.String("subject", id.Subject),
					zap.String("role", id.Role.String()),
					zap.String("required", required.String()),
				)
				m.RoleDenied(required.String())
				httpx.WriteFailure(w, http.StatusForbidden, httpx.MsgAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
