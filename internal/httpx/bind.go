package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1MB

// Binder decodes and validates JSON request bodies, writing the error
// response itself when a body is rejected.
type Binder struct {
	validate *validator.Validate
	logger   *zap.Logger
}

func NewBinder(logger *zap.Logger) *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Binder{validate: v, logger: logger}
}

func (b *Binder) Validator() *validator.Validate {
	return b.validate
}

// Bind reports whether dst was filled from a single, valid JSON object.
func (b *Binder) Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse[any]{
			Code:    ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return false
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		b.logger.Warn("failed to decode request body", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "invalid request body",
		})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		b.logger.Warn("trailing data after JSON body", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return false
	}

	if err := b.validate.Struct(dst); err != nil {
		b.logger.Debug("request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusUnprocessableEntity, ErrorResponse[[]FieldError]{
			Code:    ErrValidationFailed,
			Message: "validation failed",
			Details: ValidationDetails(err),
		})
		return false
	}
	return true
}

func WriteInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, ErrorResponse[any]{
		Code:    ErrInternal,
		Message: MsgInternalError,
	})
}
