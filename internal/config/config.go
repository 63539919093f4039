package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const minSecretLength = 32

// DefaultPublicEndpoints is used when PUBLIC_ENDPOINTS is not set.
var DefaultPublicEndpoints = []string{
	"/auth/login",
	"/auth/register",
	"/flights/search",
	"/flights/locations",
	"/flights/locations/**",
	"/flights/upcoming",
	"/actuator/**",
}

type AppConfig struct {
	Env             string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	Secret   string
	TTL      time.Duration
	Issuer   string
	Audience string
}

type SecurityConfig struct {
	PublicEndpoints    []string
	DenylistEnabled    bool
	LoginRateLimit     int
	CORSAllowedOrigins []string
}

// SeedConfig describes the admin account created at start-up. Seeding is
// skipped when Email is empty.
type SeedConfig struct {
	Email    string
	Password string
	Name     string
}

type Config struct {
	AppConfig      *AppConfig
	DbConfig       *DbConfig
	JWTConfig      *JWTConfig
	SecurityConfig *SecurityConfig
	SeedConfig     *SeedConfig
}

func (a *AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// LoadConfig reads the process environment, after merging an optional .env
// file from envFile. The returned value is never mutated afterwards.
func LoadConfig(logger *zap.Logger, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warn("no .env file loaded", zap.String("path", envFile), zap.Error(err))
		}
	}

	/** app config */
	readTimeout, err := durationEnv("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("APP_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("APP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("APP_SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Env:             stringEnv("APP_ENV", "production"),
		Port:            stringEnv("APP_PORT", "8080"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}

	/** db config */
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return nil, errors.New("POSTGRES_DSN is not set")
	}
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** jwt config */
	secret := os.Getenv("JWT_SECRET")
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	ttl, err := durationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errors.New("JWT_TTL must be positive")
	}

	jwtConfig := &JWTConfig{
		Secret:   secret,
		TTL:      ttl,
		Issuer:   os.Getenv("JWT_ISSUER"),
		Audience: os.Getenv("JWT_AUDIENCE"),
	}

	/** security config */
	denylist, err := boolEnv("TOKEN_DENYLIST_ENABLED", false)
	if err != nil {
		return nil, err
	}
	loginRate, err := intEnv("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	securityConfig := &SecurityConfig{
		PublicEndpoints:    listEnv("PUBLIC_ENDPOINTS", DefaultPublicEndpoints),
		DenylistEnabled:    denylist,
		LoginRateLimit:     loginRate,
		CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	/** seed config */
	seedConfig := &SeedConfig{
		Email:    os.Getenv("SEED_ADMIN_EMAIL"),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		Name:     stringEnv("SEED_ADMIN_NAME", "Administrator"),
	}
	if seedConfig.Email != "" && seedConfig.Password == "" {
		return nil, errors.New("SEED_ADMIN_PASSWORD is required when SEED_ADMIN_EMAIL is set")
	}

	return &Config{
		AppConfig:      appConfig,
		DbConfig:       dbConfig,
		JWTConfig:      jwtConfig,
		SecurityConfig: securityConfig,
		SeedConfig:     seedConfig,
	}, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// listEnv splits a comma separated value, dropping blanks.
func listEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		out := make([]string, len(def))
		copy(out, def)
		return out
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
