package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config: настройки бота-консоли.
type Config struct {
	BotToken       string
	APIBaseURL     string
	GatewayTimeout time.Duration
	AdminIDs       []int64 // пусто: доступ у всех
	HTTPAddr       string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string

	SessionBackend string // memory|redis
	SessionTTL     time.Duration
	Redis          RedisConfig

	MinIO MinIOConfig

	ProbeInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig: при пустом Endpoint выгрузки отправляются только документом в чат.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

// ServerConfig: настройки recordsd, эталонного REST-сервера.
type ServerConfig struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string
	SentryDSN   string
}

func Load() (*Config, error) {
	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	base := strings.TrimRight(getenv("API_BASE_URL", "http://localhost:5000"), "/")
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL: bad url %q", base)
	}

	timeout, err := getDuration("GATEWAY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	probe, err := getDuration("BACKEND_PROBE_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getenv("SESSION_BACKEND", "memory"))
	if backend != "memory" && backend != "redis" {
		return nil, fmt.Errorf("SESSION_BACKEND: want memory|redis, got %q", backend)
	}
	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	cfg := &Config{
		BotToken:       mustEnv("BOT_TOKEN"),
		APIBaseURL:     base,
		GatewayTimeout: timeout,
		AdminIDs:       adminIDs,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		SessionBackend: backend,
		SessionTTL:     ttl,
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenv("MINIO_BUCKET", "gradebook-exports"),
			UseSSL:    getBool("MINIO_USE_SSL"),
		},
		ProbeInterval: probe,
	}
	return cfg, nil
}

func LoadServer() (*ServerConfig, error) {
	return &ServerConfig{
		DatabaseURL: mustEnv("DATABASE_URL"),
		HTTPAddr:    getenv("HTTP_ADDR", ":5000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
	}, nil
}

// IsAdmin: пустой список пускает всех.
func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminIDs) == 0 {
		return true
	}
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", k)
	}
	return d, nil
}

func getBool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
