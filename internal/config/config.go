package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// Config holds all workbench settings. Values come from an optional YAML
// file (WORKBENCH_CONFIG) overridden by environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Computation backend.
	CoreURL            string
	CoreCmd            string // spawn command; empty means externally managed
	CoreStartTimeout   time.Duration
	CoreRequestTimeout time.Duration
	MetadataCacheSize  int

	// Session persistence.
	SessionDBPath    string
	AutosaveInterval time.Duration
	SessionRetain    int

	// Preselected workflow variant ("B", "C", or empty for none).
	DefaultVariant string
}

// fileConfig mirrors Config for the YAML overlay. File values become the
// defaults that environment variables override.
type fileConfig struct {
	HTTPAddr           string `yaml:"httpAddr"`
	LogLevel           string `yaml:"logLevel"`
	LogFormat          string `yaml:"logFormat"`
	CoreURL            string `yaml:"coreURL"`
	CoreCmd            string `yaml:"coreCmd"`
	CoreStartTimeout   string `yaml:"coreStartTimeout"`
	CoreRequestTimeout string `yaml:"coreRequestTimeout"`
	MetadataCacheSize  int    `yaml:"metadataCacheSize"`
	SessionDBPath      string `yaml:"sessionDB"`
	AutosaveInterval   string `yaml:"autosaveInterval"`
	SessionRetain      int    `yaml:"sessionRetain"`
	DefaultVariant     string `yaml:"defaultVariant"`
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	file, err := loadFile(os.Getenv("WORKBENCH_CONFIG"))
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	startTimeout, err := parseDuration("CORE_START_TIMEOUT", file.CoreStartTimeout, "60s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := parseDuration("CORE_REQUEST_TIMEOUT", file.CoreRequestTimeout, "120s")
	if err != nil {
		return nil, err
	}
	autosaveInterval, err := parseDuration("AUTOSAVE_INTERVAL", file.AutosaveInterval, "30s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("METADATA_CACHE_SIZE", file.MetadataCacheSize, 256)
	if err != nil {
		return nil, err
	}
	sessionRetain, err := parseInt("SESSION_RETAIN", file.SessionRetain, 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", orDefault(file.HTTPAddr, ":8100")),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", orDefault(file.LogLevel, "info")),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", orDefault(file.LogFormat, "json")),
		ShutdownTimeout: shutdownTimeout,

		CoreURL:            sharedcfg.EnvOrDefault("CORE_URL", orDefault(file.CoreURL, "http://127.0.0.1:8888")),
		CoreCmd:            sharedcfg.EnvOrDefault("CORE_CMD", file.CoreCmd),
		CoreStartTimeout:   startTimeout,
		CoreRequestTimeout: requestTimeout,
		MetadataCacheSize:  cacheSize,

		SessionDBPath:    sharedcfg.EnvOrDefault("SESSION_DB", orDefault(file.SessionDBPath, "workbench-session.db")),
		AutosaveInterval: autosaveInterval,
		SessionRetain:    sessionRetain,

		DefaultVariant: sharedcfg.EnvOrDefault("WORKFLOW_VARIANT", file.DefaultVariant),
	}

	if cfg.CoreURL == "" {
		return nil, errors.New("CORE_URL is required")
	}
	if cfg.MetadataCacheSize <= 0 {
		return nil, errors.New("METADATA_CACHE_SIZE must be positive")
	}
	if cfg.SessionRetain <= 0 {
		return nil, errors.New("SESSION_RETAIN must be positive")
	}
	switch cfg.DefaultVariant {
	case "", "B", "C":
	default:
		return nil, fmt.Errorf("invalid WORKFLOW_VARIANT %q", cfg.DefaultVariant)
	}

	return cfg, nil
}

// loadFile parses the optional YAML config overlay. A missing path is not
// an error; an unreadable or malformed file is.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func parseDuration(envKey, fileValue, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(envKey, orDefault(fileValue, def))
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", envKey)
	}
	return d, nil
}

func parseInt(envKey string, fileValue, def int) (int, error) {
	if fileValue != 0 {
		def = fileValue
	}
	s := os.Getenv(envKey)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", envKey)
	}
	return n, nil
}
