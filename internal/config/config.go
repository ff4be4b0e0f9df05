package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// RateLimitRule pairs a request ceiling with the sliding window it applies to.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

// Config holds runtime configuration values for the API service. It is built
// once in main and passed by value into every component that needs it.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	DatabaseURL string
	RedisURL    string
	NATSURL     string
	NATSSubject string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	CSRFSecret   string
	CSRFTokenTTL time.Duration

	BaseDomain   string
	TenantHeader string

	RateLimitDefault RateLimitRule
	RateLimitRules   map[string]RateLimitRule

	CacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUSTACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduStack API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "edustack.announcements")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "168h")
	v.SetDefault("csrf.token_ttl", "1h")
	v.SetDefault("base.domain", "localhost")
	v.SetDefault("tenant.header", "X-Tenant-ID")
	v.SetDefault("ratelimit.default_limit", 100)
	v.SetDefault("ratelimit.default_window", "1m")
	v.SetDefault("ratelimit.login_limit", 10)
	v.SetDefault("ratelimit.login_window", "1m")
	v.SetDefault("cache.ttl", "5m")

	accessTTL, err := parseDuration(v, "jwt.access_ttl", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := parseDuration(v, "jwt.refresh_ttl", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	csrfTTL, err := parseDuration(v, "csrf.token_ttl", time.Hour)
	if err != nil {
		return Config{}, err
	}
	defaultWindow, err := parseDuration(v, "ratelimit.default_window", time.Minute)
	if err != nil {
		return Config{}, err
	}
	loginWindow, err := parseDuration(v, "ratelimit.login_window", time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "cache.ttl", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
		CSRFSecret:       v.GetString("csrf.secret"),
		CSRFTokenTTL:     csrfTTL,
		BaseDomain:       strings.ToLower(strings.TrimSpace(v.GetString("base.domain"))),
		TenantHeader:     v.GetString("tenant.header"),
		RateLimitDefault: RateLimitRule{
			Limit:  v.GetInt("ratelimit.default_limit"),
			Window: defaultWindow,
		},
		RateLimitRules: map[string]RateLimitRule{
			"/api/v1/auth/login": {
				Limit:  v.GetInt("ratelimit.login_limit"),
				Window: loginWindow,
			},
		},
		CacheTTL: cacheTTL,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.CSRFSecret == "" {
		cfg.CSRFSecret = cfg.JWTSecret
	}

	if cfg.RateLimitDefault.Limit <= 0 {
		cfg.RateLimitDefault.Limit = 100
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}
