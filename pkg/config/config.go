package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads from YAML in the "30s"/"1m"
// string form and writes back the same way.
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds all configuration options for the Weibo crawler
type Config struct {
	// Weibo session and transport settings
	Weibo WeiboConfig `yaml:"weibo" json:"weibo"`

	// Crawl pacing and bounds
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Retry behaviour for transient failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output file locations
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// WeiboConfig holds session credentials and HTTP settings
type WeiboConfig struct {
	Cookie         string   `yaml:"cookie" json:"cookie"`
	CookieFile     string   `yaml:"cookie_file" json:"cookie_file"`
	UserAgent      string   `yaml:"user_agent" json:"user_agent"`
	BaseURL        string   `yaml:"base_url" json:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`
}

// CrawlConfig bounds a crawl run
type CrawlConfig struct {
	PageSize     int      `yaml:"page_size" json:"page_size"`
	MaxPages     int      `yaml:"max_pages" json:"max_pages"`
	CommentCount int      `yaml:"comment_count" json:"comment_count"`
	TotalLimit   int      `yaml:"total_limit" json:"total_limit"`
	PageDelay    Duration `yaml:"page_delay" json:"page_delay"`
	UserDelay    Duration `yaml:"user_delay" json:"user_delay"`
}

// RetryConfig holds bounded-retry settings for seed collection fetches
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay" json:"max_delay"`
}

// OutputConfig holds output file locations
type OutputConfig struct {
	CorpusFile   string `yaml:"corpus_file" json:"corpus_file"`
	ReadableFile string `yaml:"readable_file" json:"readable_file"`
	UserIDsFile  string `yaml:"user_ids_file" json:"user_ids_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Weibo: WeiboConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			BaseURL:        "https://weibo.com",
			RequestTimeout: Duration(30 * time.Second),
		},
		Crawl: CrawlConfig{
			PageSize:     20,
			MaxPages:     5,
			CommentCount: 10,
			TotalLimit:   10000,
			PageDelay:    Duration(time.Second),
			UserDelay:    Duration(time.Second),
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   Duration(3 * time.Second),
			MaxDelay:    Duration(time.Minute),
		},
		Output: OutputConfig{
			CorpusFile:   "all_weibos.txt",
			ReadableFile: "all_weibos_readable.txt",
			UserIDsFile:  "user_ids.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cookie := os.Getenv("WEIBOCRAWL_COOKIE"); cookie != "" {
		c.Weibo.Cookie = cookie
	}
	if cookieFile := os.Getenv("WEIBOCRAWL_COOKIE_FILE"); cookieFile != "" {
		c.Weibo.CookieFile = cookieFile
	}
	if userAgent := os.Getenv("WEIBOCRAWL_USER_AGENT"); userAgent != "" {
		c.Weibo.UserAgent = userAgent
	}
	if baseURL := os.Getenv("WEIBOCRAWL_BASE_URL"); baseURL != "" {
		c.Weibo.BaseURL = baseURL
	}

	if maxPages := os.Getenv("WEIBOCRAWL_MAX_PAGES"); maxPages != "" {
		var val int
		fmt.Sscanf(maxPages, "%d", &val)
		if val > 0 {
			c.Crawl.MaxPages = val
		}
	}
	if totalLimit := os.Getenv("WEIBOCRAWL_TOTAL_LIMIT"); totalLimit != "" {
		var val int
		fmt.Sscanf(totalLimit, "%d", &val)
		if val > 0 {
			c.Crawl.TotalLimit = val
		}
	}

	if corpusFile := os.Getenv("WEIBOCRAWL_CORPUS_FILE"); corpusFile != "" {
		c.Output.CorpusFile = corpusFile
	}

	if logLevel := os.Getenv("WEIBOCRAWL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

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
	locations := []string{
		".weibocrawl.yaml",
		".weibocrawl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "weibocrawl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "weibocrawl", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".weibocrawl.yaml"),
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

	if c.Weibo.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Weibo.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Crawl.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Crawl.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	if c.Crawl.CommentCount < 0 {
		errs = append(errs, errors.New("comment count cannot be negative"))
	}
	if c.Crawl.TotalLimit <= 0 {
		errs = append(errs, errors.New("total limit must be positive"))
	}
	if c.Crawl.PageDelay < 0 || c.Crawl.UserDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("retry base delay must be positive"))
	}

	if c.Output.CorpusFile == "" {
		errs = append(errs, errors.New("corpus file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
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

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if cookie, ok := flags["cookie"].(string); ok && cookie != "" {
		c.Weibo.Cookie = cookie
	}
	if cookieFile, ok := flags["cookie-file"].(string); ok && cookieFile != "" {
		c.Weibo.CookieFile = cookieFile
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Crawl.MaxPages = maxPages
	}
	if totalLimit, ok := flags["total-limit"].(int); ok && totalLimit > 0 {
		c.Crawl.TotalLimit = totalLimit
	}
	if userIDsFile, ok := flags["user-ids-file"].(string); ok && userIDsFile != "" {
		c.Output.UserIDsFile = userIDsFile
	}
	if corpusFile, ok := flags["output"].(string); ok && corpusFile != "" {
		c.Output.CorpusFile = corpusFile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".weibocrawl.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
