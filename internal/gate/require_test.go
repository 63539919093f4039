package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mehmetcc/flightdesk/internal/user"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireRole(user.RoleAdmin, zap.NewNop(), nil)(ok)

	tests := []struct {
		name     string
		identity *Identity
		want     int
		body     string
	}{
		{"no identity", nil, http.StatusUnauthorized, `{"success": false, "error": "Invalid or missing token"}`},
		{"user role", &Identity{Subject: "u@flightdesk.io", Role: user.RoleUser}, http.StatusForbidden, `{"success": false, "error": "Access denied"}`},
		{"unknown role", &Identity{Subject: "u@flightdesk.io", Role: "GUEST"}, http.StatusForbidden, `{"success": false, "error": "Access denied"}`},
		{"admin role", &Identity{Subject: "a@flightdesk.io", Role: user.RoleAdmin}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/flights/admin", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}
