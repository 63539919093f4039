package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteFailure_FixedShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFailure(rec, http.StatusUnauthorized, MsgInvalidToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Invalid or missing token"}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, "ok", map[string]int{"n": 1})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, map[string]any{"n": float64(1)}, body["data"])
	assert.NotEmpty(t, body["time"])
}

type bindTarget struct {
	Email string `json:"email" validate:"required,email"`
}

func TestBinder_Bind(t *testing.T) {
	b := NewBinder(zap.NewNop())

	tests := []struct {
		name        string
		contentType string
		body        string
		wantOK      bool
		wantStatus  int
		wantCode    ErrorCode
	}{
		{"valid", "application/json", `{"email":"a@b.io"}`, true, http.StatusOK, ""},
		{"wrong content type", "text/plain", `{"email":"a@b.io"}`, false, http.StatusUnsupportedMediaType, ErrUnsupportedMedia},
		{"unknown field", "application/json", `{"email":"a@b.io","x":1}`, false, http.StatusBadRequest, ErrInvalidJSON},
		{"trailing data", "application/json", `{"email":"a@b.io"}{}`, false, http.StatusBadRequest, ErrInvalidJSON},
		{"invalid email", "application/json", `{"email":"nope"}`, false, http.StatusUnprocessableEntity, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			var dst bindTarget
			ok := b.Bind(rec, req, &dst)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "a@b.io", dst.Email)
				return
			}
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code    ErrorCode    `json:"code"`
					Details []FieldError `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantCode == ErrValidationFailed {
				require.Len(t, body.Error.Details, 1)
				assert.Equal(t, "email", body.Error.Details[0].Field)
			}
		})
	}
}
