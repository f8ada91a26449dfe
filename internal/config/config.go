// Package config loads process settings from the environment. A .env file is
// read first when present; real environment variables win over it.
package config

import (
	"crypto/tls"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/book-records/internal/store"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	AppEnv string
	Addr   string

	Backend     store.Backend
	MongoURI    string
	DBName      string
	Collection  string
	DatabaseURL string

	RedisURL      string
	RedisAddr     string
	RedisUser     string
	RedisPassword string

	TLSCert string
	TLSKey  string

	CORSOrigins    []string
	TrustedProxies []string
	MaxBodySize    int64

	RateLimitRPS    float64
	RateLimitBurst  int
	RateLimitHourly int

	LogLevel  string
	LogFormat string

	ConnectTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LoadDotEnv reads the given .env files, ignoring ones that do not exist.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the environment and validates the result. Every problem is
// reported, not just the first.
func Load() (Config, error) {
	var errs *multierror.Error

	c := Config{
		AppEnv:         envString("APP_ENV", "development"),
		Addr:           addr(envString("PORT", "3000")),
		Backend:        store.Backend(strings.ToLower(envString("STORE_BACKEND", string(store.BackendMongo)))),
		MongoURI:       os.Getenv("ATLAS_URI"),
		DBName:         os.Getenv("DB_NAME"),
		Collection:     envString("BOOKS_COLLECTION", store.DefaultCollection),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("UPSTASH_REDIS_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisUser:      os.Getenv("REDIS_USER"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		TLSCert:        os.Getenv("TLS_CERT"),
		TLSKey:         os.Getenv("TLS_KEY"),
		CORSOrigins:    envList("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		TrustedProxies: envList("TRUSTED_PROXIES", ""),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogFormat:      envString("LOG_FORMAT", "text"),
	}

	var err error
	if c.MaxBodySize, err = envInt64("MAX_BODY_SIZE", 10*1024*1024); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("MAX_BODY_SIZE: %w", err))
	}
	if c.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 5); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
	}
	if c.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 20); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
	}
	if c.RateLimitHourly, err = envInt("RATE_LIMIT_HOURLY", 3000); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("RATE_LIMIT_HOURLY: %w", err))
	}
	if c.ConnectTimeout, err = envDuration("STORE_CONNECT_TIMEOUT", "30s"); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("STORE_CONNECT_TIMEOUT: %w", err))
	}
	if c.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}

	if err := c.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return c, errs.ErrorOrNil()
}

// Validate fails fast on settings the server cannot start with.
func (c Config) Validate() error {
	var errs *multierror.Error

	if !c.Backend.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("STORE_BACKEND %q must be one of mongo, postgres, redis, memory", c.Backend))
	}
	switch c.Backend {
	case store.BackendMongo:
		if c.MongoURI == "" {
			errs = multierror.Append(errs, fmt.Errorf("ATLAS_URI is required for the mongo backend"))
		}
		if c.DBName == "" {
			errs = multierror.Append(errs, fmt.Errorf("DB_NAME is required for the mongo backend"))
		}
	case store.BackendPostgres:
		if c.DatabaseURL == "" {
			errs = multierror.Append(errs, fmt.Errorf("DATABASE_URL is required for the postgres backend"))
		}
	case store.BackendRedis:
		if !c.RedisConfigured() {
			errs = multierror.Append(errs, fmt.Errorf("UPSTASH_REDIS_URL or REDIS_ADDR is required for the redis backend"))
		}
	}
	if c.Collection == "" {
		errs = multierror.Append(errs, fmt.Errorf("BOOKS_COLLECTION must not be empty"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = multierror.Append(errs, fmt.Errorf("TLS_CERT and TLS_KEY must be set together"))
	}
	for _, p := range c.TrustedProxies {
		if !validProxy(p) {
			errs = multierror.Append(errs, fmt.Errorf("TRUSTED_PROXIES: %q is not an IP address or CIDR range", p))
		}
	}
	if c.MaxBodySize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("MAX_BODY_SIZE must be > 0"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 || c.RateLimitHourly < 1 {
		errs = multierror.Append(errs, fmt.Errorf("rate limits must be positive"))
	}
	return errs.ErrorOrNil()
}

// HardeningWarnings returns non-fatal warnings worth logging on startup.
func (c Config) HardeningWarnings() []string {
	var warns []string
	if !strings.EqualFold(c.AppEnv, "production") {
		return warns
	}
	if c.Backend == store.BackendMemory {
		warns = append(warns, "STORE_BACKEND=memory loses every record on restart")
	}
	if c.TLSCert == "" {
		warns = append(warns, "TLS_CERT/TLS_KEY not set; serving plain HTTP")
	}
	if strings.HasPrefix(c.RedisURL, "redis://") {
		warns = append(warns, "UPSTASH_REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
	}
	if c.RedisURL == "" && c.RedisAddr != "" && (c.RedisUser == "" || c.RedisPassword == "") {
		warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
	}
	return warns
}

func (c Config) RedisConfigured() bool { return c.RedisURL != "" || c.RedisAddr != "" }

// RedisOptions builds client options from the full URL when given, or from the
// split address fields.
func (c Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL != "" {
		opt, err := redis.ParseURL(c.RedisURL) // e.g. rediss://default:<token>@host:port
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTASH_REDIS_URL: %w", err)
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return opt, nil
	}
	if c.RedisAddr == "" {
		return nil, fmt.Errorf("missing Redis config: set UPSTASH_REDIS_URL or REDIS_ADDR")
	}
	opt := &redis.Options{
		Addr:         c.RedisAddr,
		Username:     c.RedisUser,
		Password:     c.RedisPassword,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if c.RedisPassword != "" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}

// --- helpers ---

func validProxy(p string) bool {
	if strings.Contains(p, "/") {
		_, err := netip.ParsePrefix(p)
		return err == nil
	}
	_, err := netip.ParseAddr(p)
	return err == nil
}

func addr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envList(key, def string) []string {
	var out []string
	for _, p := range strings.Split(envString(key, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDuration(key, def string) (time.Duration, error) {
	s := envString(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}
