package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"

	TokenSourceBearer = "bearer"
	TokenSourceCookie = "cookie"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	SessionBackend          string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	SessionTTL              time.Duration
	SessionRenewThreshold   time.Duration
	TokenSource             string
	SessionCookieName       string
	CookieSecure            bool
	PublicRoutes            []string
	CORSOrigins             []string
	// RateLimitRPM of zero falls back to 300; a negative value disables the
	// general limiter. AuthRateLimitRPM has no off switch.
	RateLimitRPM     int
	AuthRateLimitRPM int
	OAuthStateSecret string
	OAuthStateTTL    time.Duration
	OAuthProviders   map[string]OAuthProvider
	LogLevel         slog.Level
}

type OAuthProvider struct {
	Name         string
	AuthorizeURL string
	ClientID     string
}

var defaultPublicRoutes = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/oauth/",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	providers, err := parseProviders(os.Getenv("OAUTH_PROVIDERS"))
	if err != nil {
		return nil, err
	}

	publicRoutes := splitCSV(os.Getenv("PUBLIC_ROUTES"))
	if len(publicRoutes) == 0 {
		publicRoutes = append([]string(nil), defaultPublicRoutes...)
	}

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 2)),
		SessionBackend:          strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendPostgres)),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getInt("REDIS_DB", 0),
		SessionTTL:              getDuration("SESSION_TTL", 30*24*time.Hour),
		SessionRenewThreshold:   getDuration("SESSION_RENEW_THRESHOLD", 24*time.Hour),
		TokenSource:             strings.ToLower(getEnv("AUTH_TOKEN_SOURCE", TokenSourceBearer)),
		SessionCookieName:       getEnv("SESSION_COOKIE_NAME", "session"),
		CookieSecure:            getBool("COOKIE_SECURE", true),
		PublicRoutes:            publicRoutes,
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 20),
		OAuthStateSecret:        strings.TrimSpace(os.Getenv("OAUTH_STATE_SECRET")),
		OAuthStateTTL:           getDuration("OAUTH_STATE_TTL", 5*time.Minute),
		OAuthProviders:          providers,
		LogLevel:                getLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.SessionBackend != SessionBackendPostgres && c.SessionBackend != SessionBackendRedis {
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendPostgres, SessionBackendRedis)
	}

	if c.SessionBackend == SessionBackendRedis && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("REDIS_ADDR is required when SESSION_BACKEND=redis")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.SessionRenewThreshold <= 0 || c.SessionRenewThreshold >= c.SessionTTL {
		return fmt.Errorf("SESSION_RENEW_THRESHOLD must be positive and shorter than SESSION_TTL")
	}

	if c.TokenSource != TokenSourceBearer && c.TokenSource != TokenSourceCookie {
		return fmt.Errorf("AUTH_TOKEN_SOURCE must be %q or %q", TokenSourceBearer, TokenSourceCookie)
	}

	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME cannot be empty")
	}

	if len(c.OAuthProviders) > 0 && c.OAuthStateSecret == "" {
		return fmt.Errorf("OAUTH_STATE_SECRET is required when OAUTH_PROVIDERS is set")
	}

	return nil
}

// parseProviders reads "name=authorizeURL|clientID;name2=..." entries.
func parseProviders(raw string) (map[string]OAuthProvider, error) {
	providers := map[string]OAuthProvider{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, rest, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("OAUTH_PROVIDERS entry %q must be name=url|client_id", entry)
		}

		authorizeURL, clientID, ok := strings.Cut(rest, "|")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" || strings.TrimSpace(authorizeURL) == "" || strings.TrimSpace(clientID) == "" {
			return nil, fmt.Errorf("OAUTH_PROVIDERS entry %q must be name=url|client_id", entry)
		}

		providers[name] = OAuthProvider{
			Name:         name,
			AuthorizeURL: strings.TrimSpace(authorizeURL),
			ClientID:     strings.TrimSpace(clientID),
		}
	}

	return providers, nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getLevel(key string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}

	return level
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
