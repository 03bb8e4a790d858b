// Package config loads service configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	GitHub    GitHubConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Render    RenderConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default 8080
	ReadTimeout  time.Duration // default 15s
	WriteTimeout time.Duration // default 30s, PNG renders are CPU bound
	IdleTimeout  time.Duration // default 60s
	CORSOrigins  []string      // default "*"
}

// GitHubConfig controls contribution lookups.
type GitHubConfig struct {
	// Token enables the GraphQL API. Without it the public page is scraped.
	Token   string
	APIURL  string
	WebURL  string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// CacheConfig controls the contribution cache and Cache-Control headers.
type CacheConfig struct {
	// Path is the Badger directory. Empty keeps the cache in memory.
	Path        string
	TTL         time.Duration
	ChartMaxAge time.Duration
	DataMaxAge  time.Duration
}

// RateLimitConfig holds inbound per-client limits.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// RenderConfig holds raster output settings.
type RenderConfig struct {
	RasterScale float64
}

// LoadConfig loads configuration from the process arguments. Precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("contribgraph", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins (default: *)")

	githubToken := fs.String("github-token", "", "GitHub personal access token")
	githubAPI := fs.String("github-api-url", "", "GitHub GraphQL endpoint")
	githubWeb := fs.String("github-web-url", "", "GitHub web base URL")

	cachePath := fs.String("cache-path", "", "Badger cache directory (default: in-memory)")
	cacheTTL := fs.String("cache-ttl", "", "Contribution cache TTL (default: 1h)")

	rateLimit := fs.String("rate-limit", "", "Inbound requests per minute per client (default: 120)")
	rasterScale := fs.String("raster-scale", "", "PNG resolution multiplier (default: 1)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		GitHub: GitHubConfig{
			Token:  getConfigValue(*githubToken, "GITHUB_PAT", ""),
			APIURL: getConfigValue(*githubAPI, "GITHUB_API_URL", "https://api.github.com/graphql"),
			WebURL: getConfigValue(*githubWeb, "GITHUB_WEB_URL", "https://github.com"),
			RPS:    getFloatConfigValue("", "GITHUB_RPS", 2),
			Burst:  getIntConfigValue("", "GITHUB_BURST", 5),
		},
		Cache: CacheConfig{
			Path: getConfigValue(*cachePath, "CACHE_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolConfigValue("", "RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 120),
			Burst:             getIntConfigValue("", "RATE_LIMIT_BURST", 20),
		},
		Render: RenderConfig{
			RasterScale: getFloatConfigValue(*rasterScale, "RASTER_SCALE", 1),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.GitHub.Timeout, "", "GITHUB_TIMEOUT", "15s"},
		{&cfg.Cache.TTL, *cacheTTL, "CACHE_TTL", "1h"},
		{&cfg.Cache.ChartMaxAge, "", "CHART_MAX_AGE", "4h"},
		{&cfg.Cache.DataMaxAge, "", "DATA_MAX_AGE", "1h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if cfg.Cache.Path != "" {
		expanded, err := expandPath(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid cache path: %w", err)
		}
		cfg.Cache.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if n, err := strconv.Atoi(c.Server.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}
	if len(c.Server.CORSOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}

	if c.GitHub.RPS <= 0 || c.GitHub.Burst < 1 {
		return errors.New("github rate limit must be positive")
	}

	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if c.Cache.ChartMaxAge < 0 || c.Cache.DataMaxAge < 0 {
		return errors.New("max-age values cannot be negative")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute < 1 || c.RateLimit.Burst < 1) {
		return errors.New("rate limit must allow at least one request")
	}

	if c.Render.RasterScale <= 0 || c.Render.RasterScale > 4 {
		return fmt.Errorf("raster scale %g out of range (0, 4]", c.Render.RasterScale)
	}

	return nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// loadEnvFile loads KEY=value lines from path. Existing environment
// variables are never overwritten.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
