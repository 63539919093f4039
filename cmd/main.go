package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehmetcc/flightdesk/internal/auth"
	"github.com/mehmetcc/flightdesk/internal/config"
	"github.com/mehmetcc/flightdesk/internal/database"
	"github.com/mehmetcc/flightdesk/internal/flight"
	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/server"
	"github.com/mehmetcc/flightdesk/internal/token"
	"github.com/mehmetcc/flightdesk/internal/user"
	"go.uber.org/zap"
)

const denylistPurgeInterval = 10 * time.Minute

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// init logger
	logger, err := newLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// load config, merging .env when present
	cfg, err := config.LoadConfig(logger, ".env")
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load database
	db, err := database.Init(ctx, cfg.DbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// run migrations
	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	users := user.NewUserRepo(db, logger.Named("user"))
	if err := user.SeedAdmin(ctx, users, cfg.SeedConfig, logger); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	m := metrics.New()
	codec := token.NewCodec(cfg.JWTConfig, logger.Named("token"))

	sessionOpts := []auth.Option{auth.WithMetrics(m)}
	var denylist token.Denylist
	if cfg.SecurityConfig.DenylistEnabled {
		denylist = token.NewDenylistRepo(db, logger.Named("denylist"))
		sessionOpts = append(sessionOpts, auth.WithDenylist(denylist))
		go token.RunPurger(ctx, denylist, denylistPurgeInterval, logger.Named("denylist"))
	}

	srv := server.New(cfg.AppConfig, logger.Named("server"))
	srv.SetHandler(server.NewRouter(server.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Codec:    codec,
		Denylist: denylist,
		Metrics:  m,
		Sessions: auth.NewSessionService(users, codec, logger.Named("session"), sessionOpts...),
		Flights:  flight.NewFlightService(flight.NewFlightRepo(db, logger.Named("flight")), logger.Named("flight"), flight.WithMetrics(m)),
	}, srv))

	logger.Info("application started",
		zap.String("env", cfg.AppConfig.Env),
		zap.Strings("public_endpoints", cfg.SecurityConfig.PublicEndpoints),
		zap.Bool("denylist", denylist != nil),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("http server stopped with error", zap.Error(err))
		return
	}
	logger.Info("application stopped")
}
