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

const envPrefix = "INSTASCRAPER_"

// Config holds all configuration options for the scraper
type Config struct {
	// Platform endpoints, credentials and transport settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Default collection limits
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Caller-side retry policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Result export
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds platform-specific configuration.
// Empty username means guest login.
type InstagramConfig struct {
	Username       string        `yaml:"username" json:"username"`
	Password       string        `yaml:"password" json:"-"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	APIBaseURL     string        `yaml:"api_base_url" json:"api_base_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	LoginUserAgent string        `yaml:"login_user_agent" json:"login_user_agent"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// ScrapeConfig holds the default amounts collected per profile
type ScrapeConfig struct {
	MaxPosts            int `yaml:"max_posts" json:"max_posts"`
	MaxHighlightStories int `yaml:"max_highlight_stories" json:"max_highlight_stories"`
	MaxComments         int `yaml:"max_comments" json:"max_comments"`
}

// RateLimitConfig holds request pacing configuration. Zero disables pacing.
type RateLimitConfig struct {
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	Strategy          string `yaml:"strategy" json:"strategy"`
}

// RetryConfig holds retry configuration used by callers of the session
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds export configuration. An empty BaseDirectory disables export.
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	Format            string `yaml:"format" json:"format"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			BaseURL:    "https://www.instagram.com/",
			APIBaseURL: "https://i.instagram.com",
			Timeout:    30 * time.Second,
		},
		Scrape: ScrapeConfig{
			MaxPosts:            10,
			MaxHighlightStories: 10,
			MaxComments:         5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
			Strategy:          "token_bucket",
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		Output: OutputConfig{
			BaseDirectory:     "",
			Format:            "json",
			CreateUserFolders: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from INSTASCRAPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := getenv("USERNAME"); v != "" {
		c.Instagram.Username = v
	}
	if v := getenv("PASSWORD"); v != "" {
		c.Instagram.Password = v
	}
	if v := getenv("BASE_URL"); v != "" {
		c.Instagram.BaseURL = v
	}
	if v := getenv("API_BASE_URL"); v != "" {
		c.Instagram.APIBaseURL = v
	}
	if v := getenv("USER_AGENT"); v != "" {
		c.Instagram.UserAgent = v
	}
	if v := getenv("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", envPrefix, err))
		} else {
			c.Instagram.Timeout = d
		}
	}

	intVars := []struct {
		name string
		dst  *int
	}{
		{"MAX_POSTS", &c.Scrape.MaxPosts},
		{"MAX_HIGHLIGHT_STORIES", &c.Scrape.MaxHighlightStories},
		{"MAX_COMMENTS", &c.Scrape.MaxComments},
		{"REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute},
		{"RETRY_MAX_ATTEMPTS", &c.Retry.MaxAttempts},
	}
	for _, iv := range intVars {
		v := getenv(iv.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, iv.name, err))
			continue
		}
		*iv.dst = n
	}

	if v := getenv("RATE_LIMIT_STRATEGY"); v != "" {
		c.RateLimit.Strategy = v
	}
	if v := getenv("RETRY_ENABLED"); v != "" {
		c.Retry.Enabled = strings.ToLower(v) == "true"
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := getenv("OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
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
	home := os.Getenv("HOME")
	locations := []string{
		".instascraper.yaml",
		".instascraper.yml",
		filepath.Join(home, ".config", "instascraper", "config.yaml"),
		filepath.Join(home, ".config", "instascraper", "config.yml"),
		filepath.Join(home, ".instascraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.Password != "" && c.Instagram.Username == "" {
		errs = append(errs, errors.New("password given without a username"))
	}
	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Instagram.APIBaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.Scrape.MaxPosts < 0 {
		errs = append(errs, errors.New("max posts cannot be negative"))
	}
	if c.Scrape.MaxHighlightStories < 0 {
		errs = append(errs, errors.New("max highlight stories cannot be negative"))
	}
	if c.Scrape.MaxComments < 0 {
		errs = append(errs, errors.New("max comments cannot be negative"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	switch c.RateLimit.Strategy {
	case "", "token_bucket", "sliding_window":
	default:
		errs = append(errs, fmt.Errorf("invalid rate limit strategy %q", c.RateLimit.Strategy))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts < 1 {
			errs = append(errs, errors.New("retry max attempts must be at least 1"))
		}
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file. The password is never written.
func (c *Config) Save(path string) error {
	cp := *c
	cp.Instagram.Password = ""

	data, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["username"].(string); ok && v != "" {
		c.Instagram.Username = v
	}
	if v, ok := flags["password"].(string); ok && v != "" {
		c.Instagram.Password = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Instagram.Timeout = v
	}
	if v, ok := flags["max-posts"].(int); ok && v >= 0 {
		c.Scrape.MaxPosts = v
	}
	if v, ok := flags["max-highlights"].(int); ok && v >= 0 {
		c.Scrape.MaxHighlightStories = v
	}
	if v, ok := flags["max-comments"].(int); ok && v >= 0 {
		c.Scrape.MaxComments = v
	}
	if v, ok := flags["rate-limit"].(int); ok && v >= 0 {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["max-retries"].(int); ok && v > 0 {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["format"].(string); ok && v != "" {
		c.Output.Format = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".instascraper.env"))

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
