package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	WallPassword     string
	WallPasswordHash string
	JWTSecret        string
	SessionTTL       time.Duration

	RedisAddr    string
	LinkCacheTTL time.Duration

	PublicBaseURL    string
	ShortURLProvider string
	BitlyToken       string
	ShortIOAPIKey    string
	ShortIODomain    string

	OpenAIAPIKey string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		WallPassword:     getenv("WALL_PASSWORD", ""),
		WallPasswordHash: getenv("WALL_PASSWORD_HASH", ""),
		JWTSecret:        getenv("JWT_SECRET", ""),

		RedisAddr: getenv("REDIS_ADDR", ""),

		PublicBaseURL:    strings.TrimRight(getenv("PUBLIC_BASE_URL", ""), "/"),
		ShortURLProvider: strings.ToLower(getenv("SHORT_URL_PROVIDER", "")),
		BitlyToken:       firstenv("BITLY_TOKEN", "BITLY_API_TOKEN"),
		ShortIOAPIKey:    firstenv("SHORTIO_API_KEY", "SHORT_IO_API_KEY"),
		ShortIODomain:    firstenv("SHORTIO_DOMAIN", "SHORT_IO_DOMAIN"),

		OpenAIAPIKey: getenv("OPENAI_API_KEY", ""),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.SessionTTL, err = getduration("SESSION_TTL", 12*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.LinkCacheTTL, err = getduration("LINK_CACHE_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("missing env: DATABASE_URL")
	}
	if cfg.WallPassword == "" && cfg.WallPasswordHash == "" {
		return cfg, errors.New("missing env: WALL_PASSWORD or WALL_PASSWORD_HASH")
	}
	if cfg.WallPassword != "" && cfg.WallPasswordHash != "" {
		return cfg, errors.New("set only one of WALL_PASSWORD and WALL_PASSWORD_HASH")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// firstenv returns the first non-empty value among keys.
func firstenv(keys ...string) string {
	for _, k := range keys {
		if v := getenv(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
