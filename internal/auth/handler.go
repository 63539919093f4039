package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/mehmetcc/flightdesk/internal/gate"
	"github.com/mehmetcc/flightdesk/internal/httpx"
	"github.com/mehmetcc/flightdesk/internal/user"
	"go.uber.org/zap"
)

const requestTimeout = 3 * time.Second

type AuthenticationHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type authenticationHandler struct {
	logger    *zap.Logger
	sessions  SessionService
	binder    *httpx.Binder
	loginRate int
}

// NewAuthenticationHandler builds the /auth routes. loginRate is the number
// of login and register attempts allowed per client IP and minute; zero or
// less disables the limit.
func NewAuthenticationHandler(sessions SessionService, binder *httpx.Binder, loginRate int, l *zap.Logger) AuthenticationHandler {
	return &authenticationHandler{
		logger:    l,
		sessions:  sessions,
		binder:    binder,
		loginRate: loginRate,
	}
}

func (a *authenticationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if a.loginRate > 0 {
			r.Use(httprate.Limit(a.loginRate, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(tooManyRequests),
			))
		}
		r.Post("/login", a.Login)
		r.Post("/register", a.Register)
	})
	r.Post("/logout", a.Logout)
	r.Get("/me", a.Me)
	return r
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteError(w, http.StatusTooManyRequests, httpx.ErrorResponse[any]{
		Code:    httpx.ErrTooManyRequests,
		Message: "too many requests",
	})
}

func (a *authenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req loginRequest
	if !a.binder.Bind(w, r, &req) {
		return
	}

	res, err := a.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if IsAuthenticationError(err) {
			a.logger.Info("login rejected", httpx.ClientFromRequest(r).Fields()...)
		}
		a.writeAuthError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, "Login successful", res)
}

func (a *authenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := a.sessions.Logout(ctx, gate.BearerToken(r)); err != nil {
		a.writeAuthError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, "Logout successful", nil)
}

func (a *authenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code:    httpx.ErrAuth,
			Message: "Invalid token or user information not available",
		})
		return
	}

	current, err := a.sessions.CurrentUser(ctx, id.Subject)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, "User information retrieved successfully", current)
}

func (a *authenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req registerRequest
	if !a.binder.Bind(w, r, &req) {
		return
	}

	created, err := a.sessions.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			a.logger.Debug("duplicate email", zap.String("email", req.Email))
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code:    httpx.ErrConflict,
				Message: "email already exists",
			})
			return
		}
		a.logger.Error("failed to register user", zap.Error(err))
		httpx.WriteInternal(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, "User registered", created)
}

func (a *authenticationHandler) writeAuthError(w http.ResponseWriter, err error) {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code:    httpx.ErrAuth,
			Message: ae.Message,
		})
		return
	}
	a.logger.Error("internal server error", zap.Error(err))
	httpx.WriteInternal(w)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
