package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mehmetcc/flightdesk/internal/auth"
	"github.com/mehmetcc/flightdesk/internal/config"
	"github.com/mehmetcc/flightdesk/internal/endpoint"
	"github.com/mehmetcc/flightdesk/internal/flight"
	"github.com/mehmetcc/flightdesk/internal/gate"
	"github.com/mehmetcc/flightdesk/internal/httpx"
	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/token"
	"go.uber.org/zap"
	"moul.io/chizap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the router is assembled from. Denylist may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       Pinger
	Codec    token.Codec
	Denylist token.Denylist
	Metrics  *metrics.Metrics
	Sessions auth.SessionService
	Flights  flight.Service
	// Now overrides the clock of the gate; nil means time.Now.
	Now func() time.Time
}

func NewRouter(d Deps, s *Server) http.Handler {
	rules := endpoint.NewRules(d.Config.SecurityConfig.PublicEndpoints...)
	binder := httpx.NewBinder(d.Logger)

	gateOpts := []gate.Option{gate.WithMetrics(d.Metrics)}
	if d.Now != nil {
		gateOpts = append(gateOpts, gate.WithClock(d.Now))
	}
	if d.Denylist != nil {
		gateOpts = append(gateOpts, gate.WithDenylist(d.Denylist))
	}
	authGate := gate.New(d.Codec, rules, d.Logger.Named("gate"), gateOpts...)

	authHandler := auth.NewAuthenticationHandler(d.Sessions, binder, d.Config.SecurityConfig.LoginRateLimit, d.Logger.Named("auth"))
	flightHandler := flight.NewFlightHandler(d.Flights, binder, d.Metrics, d.Logger.Named("flight"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(d.Logger.Named("http"), &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.SecurityConfig.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(d.Metrics.Middleware)
	r.Use(authGate.Handler)

	r.Mount("/auth", authHandler.Routes())
	r.Mount("/flights", flightHandler.Routes())

	r.Route("/actuator", func(r chi.Router) {
		r.Get("/health", health(d.DB, s, d.Logger))
		r.Method(http.MethodGet, "/prometheus", d.Metrics.Handler())
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "resource not found",
		})
	})
	return r
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// health answers 503 while the server drains or the database is unreachable.
func health(db Pinger, s *Server, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s != nil && s.IsShuttingDown() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, "shutting down", healthStatus{Status: "DOWN", Database: "UNKNOWN"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, "database unavailable", healthStatus{Status: "DOWN", Database: "DOWN"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, "ok", healthStatus{Status: "UP", Database: "UP"})
	}
}
