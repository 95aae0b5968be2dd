package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/analysis"
	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Storage    StorageConfig    `mapstructure:"storage"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalysisConfig holds the default analysis settings; requests may override
// the qualifying label, the unscored switch and the timezone.
type AnalysisConfig struct {
	RollingWindow       int     `mapstructure:"rolling_window"`
	AnomalySigma        float64 `mapstructure:"anomaly_sigma"`
	ConfidenceDivisor   float64 `mapstructure:"confidence_divisor"`
	MinEvents           int     `mapstructure:"min_events"`
	MinTrendPoints      int     `mapstructure:"min_trend_points"`
	MinIntervalDays     int     `mapstructure:"min_interval_days"`
	QualifyingLabel     string  `mapstructure:"qualifying_label"`
	ShiftThreshold      float64 `mapstructure:"shift_threshold"`
	MinRoutineFrequency int     `mapstructure:"min_routine_frequency"`
	Timezone            string  `mapstructure:"timezone"`
	IncludeUnscored     bool    `mapstructure:"include_unscored"`
}

// ClassifierConfig holds HuggingFace inference settings
type ClassifierConfig struct {
	APIURL              string        `mapstructure:"api_url"`
	Model               string        `mapstructure:"model"`
	APIToken            string        `mapstructure:"api_token"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryWait           time.Duration `mapstructure:"retry_wait"`
	ModelLoadingWait    time.Duration `mapstructure:"model_loading_wait"`
	RateLimit           float64       `mapstructure:"rate_limit"`
	Burst               int           `mapstructure:"burst"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	MaxTextLength       int           `mapstructure:"max_text_length"`
}

// StorageConfig holds report cache configuration
type StorageConfig struct {
	// SQLitePath is the report database; empty disables the report cache.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RateLimitConfig holds per-client HTTP rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// CORSConfig lists the origins allowed to call the API. Entries may use a
// single-label wildcard such as "https://*.example.com".
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from .env, environment variables and an optional
// config file. configFile may be empty, in which case config.yaml is looked
// up in the working directory and ./config.
func Load(configFile string) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("LIFELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to well-known non-prefixed environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("classifier.api_token", "LIFELINE_CLASSIFIER_API_TOKEN", "HUGGINGFACE_API_TOKEN")
	v.BindEnv("cors.allowed_origins", "LIFELINE_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		// It's okay if config file doesn't exist
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("analysis.rolling_window", analysis.DefaultRollingWindow)
	v.SetDefault("analysis.anomaly_sigma", analysis.DefaultSigma)
	v.SetDefault("analysis.confidence_divisor", analysis.DefaultConfidenceDivisor)
	v.SetDefault("analysis.min_events", analysis.DefaultMinEvents)
	v.SetDefault("analysis.min_trend_points", analysis.DefaultMinTrendPoints)
	v.SetDefault("analysis.min_interval_days", analysis.DefaultMinIntervalDays)
	v.SetDefault("analysis.qualifying_label", analysis.DefaultQualifyingLabel)
	v.SetDefault("analysis.shift_threshold", analysis.DefaultShiftThreshold)
	v.SetDefault("analysis.min_routine_frequency", analysis.DefaultMinRoutineFrequency)
	v.SetDefault("analysis.timezone", "UTC")
	v.SetDefault("analysis.include_unscored", false)

	v.SetDefault("classifier.api_url", classifier.DefaultAPIURL)
	v.SetDefault("classifier.model", classifier.DefaultModel)
	v.SetDefault("classifier.api_token", "")
	v.SetDefault("classifier.timeout", "30s")
	v.SetDefault("classifier.max_retries", 2)
	v.SetDefault("classifier.retry_wait", "5s")
	v.SetDefault("classifier.model_loading_wait", "10s")
	v.SetDefault("classifier.rate_limit", 5.0)
	v.SetDefault("classifier.burst", 5)
	v.SetDefault("classifier.confidence_threshold", classifier.DefaultConfidenceThreshold)
	v.SetDefault("classifier.max_text_length", classifier.DefaultMaxTextLength)

	v.SetDefault("storage.sqlite_path", "./data/lifeline.db")

	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	a := c.Analysis
	if a.RollingWindow < 1 {
		return fmt.Errorf("analysis.rolling_window must be at least 1")
	}
	if a.AnomalySigma <= 0 {
		return fmt.Errorf("analysis.anomaly_sigma must be positive")
	}
	if a.ConfidenceDivisor <= 0 {
		return fmt.Errorf("analysis.confidence_divisor must be positive")
	}
	if a.MinTrendPoints < 2 {
		return fmt.Errorf("analysis.min_trend_points must be at least 2")
	}
	if a.MinIntervalDays < 2 {
		return fmt.Errorf("analysis.min_interval_days must be at least 2")
	}
	if strings.TrimSpace(a.QualifyingLabel) == "" {
		return fmt.Errorf("analysis.qualifying_label is required")
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("analysis.timezone: %w", err)
	}

	cl := c.Classifier
	if cl.APIURL == "" || cl.Model == "" {
		return fmt.Errorf("classifier.api_url and classifier.model are required")
	}
	if cl.ConfidenceThreshold <= 0 || cl.ConfidenceThreshold >= 1 {
		return fmt.Errorf("classifier.confidence_threshold must be between 0 and 1")
	}
	if cl.MaxRetries < 0 {
		return fmt.Errorf("classifier.max_retries must not be negative")
	}

	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("ratelimit.requests_per_minute must be at least 1")
	}

	return nil
}

// AnalysisOptions converts the analysis section into engine options
func (c *Config) AnalysisOptions() analysis.Options {
	a := c.Analysis
	return analysis.Options{
		RollingWindow:       a.RollingWindow,
		Sigma:               a.AnomalySigma,
		ConfidenceDivisor:   a.ConfidenceDivisor,
		MinEvents:           a.MinEvents,
		MinTrendPoints:      a.MinTrendPoints,
		MinIntervalDays:     a.MinIntervalDays,
		QualifyingLabel:     a.QualifyingLabel,
		ShiftThreshold:      a.ShiftThreshold,
		MinRoutineFrequency: a.MinRoutineFrequency,
		IncludeUnscored:     a.IncludeUnscored,
	}
}

// Location returns the zone used for timestamps without an offset. Validate
// has already rejected unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ClassifierClientConfig converts the classifier section into client settings
func (c *Config) ClassifierClientConfig() classifier.Config {
	cl := c.Classifier
	return classifier.Config{
		APIURL:           cl.APIURL,
		Model:            cl.Model,
		Token:            cl.APIToken,
		Timeout:          cl.Timeout,
		MaxRetries:       cl.MaxRetries,
		RetryWait:        cl.RetryWait,
		ModelLoadingWait: cl.ModelLoadingWait,
		RateLimit:        cl.RateLimit,
		Burst:            cl.Burst,
	}
}

// ActivityOptions converts the classifier section into text handling options
func (c *Config) ActivityOptions() classifier.ActivityOptions {
	return classifier.ActivityOptions{
		ConfidenceThreshold: c.Classifier.ConfidenceThreshold,
		MaxTextLength:       c.Classifier.MaxTextLength,
		Location:            c.Location(),
	}
}

// LoggerConfig converts the logging section into logger settings
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.Logging.Level)
	cfg.Format = c.Logging.Format
	return cfg
}
