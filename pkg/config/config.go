package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for igreport
type Config struct {
	// Instagram session and endpoint
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Scan pacing, limits and timeouts
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Report output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Scan result cache
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Persisted scan history
	History HistoryConfig `yaml:"history" json:"history"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration.
// Passwords are never part of the configuration.
type InstagramConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	LoginUser string `yaml:"login_user" json:"login_user"`
}

// ScanConfig controls how a profile is walked
type ScanConfig struct {
	PostLimit         int           `yaml:"post_limit" json:"post_limit"`
	PacingMin         time.Duration `yaml:"pacing_min" json:"pacing_min"`
	PacingMax         time.Duration `yaml:"pacing_max" json:"pacing_max"`
	CompetitorDelay   time.Duration `yaml:"competitor_delay" json:"competitor_delay"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Limiter           string        `yaml:"limiter" json:"limiter"`
	PageSize          int           `yaml:"page_size" json:"page_size"`
	Timezone          string        `yaml:"timezone" json:"timezone"`
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Format    string `yaml:"format" json:"format"`
	Save      bool   `yaml:"save" json:"save"`
}

// CacheConfig selects where finished scans are cached
type CacheConfig struct {
	Backend string        `yaml:"backend" json:"backend"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// HistoryConfig controls persisted scan snapshots
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	DSN     string `yaml:"dsn" json:"dsn"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	OnRateLimit      bool   `yaml:"on_rate_limit" json:"on_rate_limit"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	Format  string `yaml:"format" json:"format"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// Output formats understood by the report renderer
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Rate limiter strategies
const (
	LimiterTokenBucket   = "token_bucket"
	LimiterSlidingWindow = "sliding_window"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			BaseURL:   "https://www.instagram.com",
		},
		Scan: ScanConfig{
			PostLimit:         40,
			PacingMin:         3 * time.Second,
			PacingMax:         6 * time.Second,
			CompetitorDelay:   3 * time.Second,
			RequestTimeout:    30 * time.Second,
			RequestsPerMinute: 60,
			Limiter:           LimiterTokenBucket,
			PageSize:          12,
		},
		Output: OutputConfig{
			Directory: "./reports",
			Format:    FormatText,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     10 * time.Minute,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			OnRateLimit:      true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString(&c.Instagram.SessionID, "IGREPORT_SESSION_ID")
	setString(&c.Instagram.CSRFToken, "IGREPORT_CSRF_TOKEN")
	setString(&c.Instagram.UserAgent, "IGREPORT_USER_AGENT")
	setString(&c.Instagram.BaseURL, "IGREPORT_BASE_URL")
	setString(&c.Instagram.LoginUser, "IGREPORT_LOGIN_USER")

	errs = append(errs,
		setInt(&c.Scan.PostLimit, "IGREPORT_POST_LIMIT"),
		setInt(&c.Scan.RequestsPerMinute, "IGREPORT_REQUESTS_PER_MINUTE"),
		setDuration(&c.Scan.PacingMin, "IGREPORT_PACING_MIN"),
		setDuration(&c.Scan.PacingMax, "IGREPORT_PACING_MAX"),
		setDuration(&c.Scan.CompetitorDelay, "IGREPORT_COMPETITOR_DELAY"),
		setDuration(&c.Scan.RequestTimeout, "IGREPORT_REQUEST_TIMEOUT"),
	)
	setString(&c.Scan.Timezone, "IGREPORT_TIMEZONE")
	setString(&c.Scan.Limiter, "IGREPORT_RATE_LIMITER")

	setString(&c.Output.Directory, "IGREPORT_OUTPUT_DIR")
	setString(&c.Output.Format, "IGREPORT_OUTPUT_FORMAT")

	setString(&c.Cache.Backend, "IGREPORT_CACHE_BACKEND")
	setString(&c.Cache.Redis.Addr, "IGREPORT_REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "IGREPORT_REDIS_PASSWORD")
	errs = append(errs, setDuration(&c.Cache.TTL, "IGREPORT_CACHE_TTL"))

	if dsn := os.Getenv("IGREPORT_DATABASE_URL"); dsn != "" {
		c.History.DSN = dsn
		c.History.Enabled = true
	}

	if notifEnabled := os.Getenv("IGREPORT_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	setString(&c.Logging.Level, "IGREPORT_LOG_LEVEL")
	setString(&c.Logging.Format, "IGREPORT_LOG_FORMAT")

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists config file locations in order of precedence
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		".igreport.yaml",
		".igreport.yml",
		filepath.Join(home, ".config", "igreport", "config.yaml"),
		filepath.Join(home, ".config", "igreport", "config.yml"),
		filepath.Join(home, ".igreport.yaml"),
	}
}

// DefaultPath is where `config init` writes a new file
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "igreport", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// A half-configured cookie session cannot authenticate
	if c.Instagram.SessionID == "" && c.Instagram.CSRFToken != "" {
		errs = append(errs, errors.New("csrf token set without a session ID"))
	}
	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("Instagram base URL is required"))
	}

	if c.Scan.PostLimit <= 0 {
		errs = append(errs, errors.New("post limit must be positive"))
	}
	if c.Scan.PacingMin < 0 || c.Scan.PacingMax < 0 {
		errs = append(errs, errors.New("pacing delays cannot be negative"))
	}
	if c.Scan.PacingMin > c.Scan.PacingMax {
		errs = append(errs, errors.New("pacing_min must not exceed pacing_max"))
	}
	if c.Scan.CompetitorDelay < 0 {
		errs = append(errs, errors.New("competitor delay cannot be negative"))
	}
	if c.Scan.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Scan.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	switch c.Scan.Limiter {
	case LimiterTokenBucket, LimiterSlidingWindow:
	default:
		errs = append(errs, fmt.Errorf("invalid rate limiter %q", c.Scan.Limiter))
	}
	if c.Scan.PageSize < 0 || c.Scan.PageSize > 50 {
		errs = append(errs, errors.New("page size cannot exceed 50"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Output.Format) {
	case FormatText, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}
	if c.Output.Save && c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required when saving reports"))
	}

	switch strings.ToLower(c.Cache.Backend) {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("redis address is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid cache backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache ttl cannot be negative"))
	}

	if c.History.Enabled && c.History.DSN == "" {
		errs = append(errs, errors.New("history requires a database DSN"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "both": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	return errors.Join(errs...)
}

// Location resolves the timezone used for weekday bucketing
func (c *Config) Location() (*time.Location, error) {
	if c.Scan.Timezone == "" || strings.EqualFold(c.Scan.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Scan.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Scan.Timezone, err)
	}
	return loc, nil
}

// HasSession reports whether a cookie session is configured
func (c *Config) HasSession() bool {
	return c.Instagram.SessionID != ""
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Zero values mean the flag was not given.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sessionID, ok := flags["session-id"].(string); ok && sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken, ok := flags["csrf-token"].(string); ok && csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if loginUser, ok := flags["login-user"].(string); ok && loginUser != "" {
		c.Instagram.LoginUser = loginUser
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Scan.PostLimit = limit
	}
	if tz, ok := flags["timezone"].(string); ok && tz != "" {
		c.Scan.Timezone = tz
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
		c.Output.Save = true
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if backend, ok := flags["cache"].(string); ok && backend != "" {
		c.Cache.Backend = backend
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Logging.NoColor = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igreport.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
