package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// API addresses the backend.
type API struct {
	URL     string
	Prefix  string
	Timeout time.Duration
}

// Session selects where the session token lives.
type Session struct {
	Backend string
	Scope   string
	TTL     time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FakeAPI configures the stub backend.
type FakeAPI struct {
	Addr          string
	JWTSigningKey string
	PlanningDelay time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	API         API
	Session     Session
	Redis       RedisConfig
	MetricsAddr string
	LogLevel    string
	FakeAPI     FakeAPI
}

// Load reads the optional dotenv files (missing files are skipped; variables
// already set win) and then builds the config from the environment.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var p parser
	cfg := Config{
		API: API{
			URL:     p.str("CONSOLE_API_URL", "http://localhost:8080"),
			Prefix:  p.str("CONSOLE_API_PREFIX", "/api"),
			Timeout: p.duration("CONSOLE_TIMEOUT", 120*time.Second),
		},
		Session: Session{
			Backend: strings.ToLower(p.str("CONSOLE_SESSION_BACKEND", SessionMemory)),
			Scope:   p.str("CONSOLE_SESSION_SCOPE", "default"),
			TTL:     p.duration("CONSOLE_SESSION_TTL", 0),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		MetricsAddr: os.Getenv("CONSOLE_METRICS_ADDR"),
		LogLevel:    p.str("CONSOLE_LOG_LEVEL", "info"),
		FakeAPI: FakeAPI{
			Addr: p.str("FAKEAPI_ADDR", ":8080"),
			// Development default; set JWT_SIGNING_KEY anywhere else.
			JWTSigningKey: p.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			PlanningDelay: p.duration("FAKEAPI_PLANNING_DELAY", 0),
		},
	}
	if err := p.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Redis.URL == "" {
			return errors.New("CONSOLE_SESSION_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.API.Timeout <= 0 {
		return errors.New("CONSOLE_TIMEOUT must be positive")
	}
	return nil
}

type parser struct {
	errs []error
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
