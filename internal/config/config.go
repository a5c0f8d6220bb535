// Package config loads the clustersummary configuration from defaults, an
// optional JSON file and CLUSTERSUMMARY_* environment variables.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/evaluate"
	"github.com/localrivet/clustersummary/internal/logger"
	"github.com/localrivet/configurator"
)

// Config represents the ClusterSummary configuration
type Config struct {
	// Vectors describes the word vector resource.
	Vectors struct {
		// Path is the whitespace-delimited vector file, optionally gzipped.
		Path string `json:"path" env:"VECTORS_PATH" validate:"required"`

		// Dimension is the number of components per word.
		Dimension int `json:"dimension" env:"VECTORS_DIMENSION" validate:"min:1"`
	} `json:"vectors"`

	// Preprocess controls sentence cleaning.
	Preprocess struct {
		// Tokenizer is the sentence splitter ("punkt", "regex").
		Tokenizer string `json:"tokenizer" env:"PREPROCESS_TOKENIZER"`

		// ShortSentenceTokens drops sentences with at most this many tokens.
		ShortSentenceTokens int `json:"short_sentence_tokens" env:"PREPROCESS_SHORT_SENTENCE_TOKENS"`
	} `json:"preprocess"`

	// Clustering controls k-means and summary assembly.
	Clustering struct {
		Seed          int64   `json:"seed" env:"CLUSTERING_SEED"`
		MaxIterations int     `json:"max_iterations" env:"CLUSTERING_MAX_ITERATIONS" validate:"min:1"`
		Restarts      int     `json:"restarts" env:"CLUSTERING_RESTARTS" validate:"min:1"`
		Tolerance     float64 `json:"tolerance" env:"CLUSTERING_TOLERANCE"`
		// Separator joins summary sentences as given; empty concatenates them.
		Separator     string  `json:"separator" env:"CLUSTERING_SEPARATOR"`
	} `json:"clustering"`

	// Evaluation controls the BLEU metric.
	Evaluation struct {
		MaxOrder  int    `json:"max_order" env:"EVALUATION_MAX_ORDER" validate:"min:1"`
		Smoothing string `json:"smoothing" env:"EVALUATION_SMOOTHING"`
	} `json:"evaluation"`

	// Batch controls dataset runs.
	Batch struct {
		Workers int `json:"workers" env:"BATCH_WORKERS" validate:"min:1"`

		// DocumentTimeout is a Go duration string such as "30s".
		DocumentTimeout string `json:"document_timeout" env:"BATCH_DOCUMENT_TIMEOUT"`
	} `json:"batch"`

	// Store contains storage-related configuration.
	Store struct {
		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`
	} `json:"store"`

	// HTTP contains the JSON API settings.
	HTTP struct {
		Addr string `json:"addr" env:"HTTP_ADDR"`
	} `json:"http"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename      = ".clustersummaryconfig"
	DefaultEnvPrefix           = "CLUSTERSUMMARY"
	DefaultVectorsPath         = "glove.twitter.27B.25d.txt"
	DefaultVectorsDimension    = 25
	DefaultTokenizer           = "punkt"
	DefaultShortSentenceTokens = 2
	DefaultSeed                = 123
	DefaultMaxIterations       = 300
	DefaultRestarts            = 10
	DefaultTolerance           = 1e-4
	DefaultSeparator           = " "
	DefaultMaxOrder            = 4
	DefaultSmoothing           = "epsilon"
	DefaultWorkers             = 4
	DefaultDocumentTimeout     = "30s"
	DefaultSQLitePath          = ".clustersummary.db"
	DefaultHTTPAddr            = "127.0.0.1:8080"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Vectors.Path = DefaultVectorsPath
	config.Vectors.Dimension = DefaultVectorsDimension
	config.Preprocess.Tokenizer = DefaultTokenizer
	config.Preprocess.ShortSentenceTokens = DefaultShortSentenceTokens
	config.Clustering.Seed = DefaultSeed
	config.Clustering.MaxIterations = DefaultMaxIterations
	config.Clustering.Restarts = DefaultRestarts
	config.Clustering.Tolerance = DefaultTolerance
	config.Clustering.Separator = DefaultSeparator
	config.Evaluation.MaxOrder = DefaultMaxOrder
	config.Evaluation.Smoothing = DefaultSmoothing
	config.Batch.Workers = DefaultWorkers
	config.Batch.DocumentTimeout = DefaultDocumentTimeout
	config.Store.SQLitePath = DefaultSQLitePath
	config.HTTP.Addr = DefaultHTTPAddr
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path. A missing
// file leaves the defaults in place; environment variables still apply.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Configuration messages go to stderr so stdout stays free for stdio transports
	stdLogger := logger.FromSettings(DefaultLogLevel, DefaultLogFormat, os.Stderr)
	return load(context.Background(), configPath, stdLogger)
}

func load(ctx context.Context, configPath string, stdLogger *slog.Logger) (*Config, error) {
	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == "" || configPath == DefaultConfigFilename {
		configPath = DefaultConfigFilename
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		stdLogger.Debug("Config file not found, using defaults and environment", "path", configPath)
	} else {
		stdLogger.Debug("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	if err := loader.Load(ctx, cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").WithField("path", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks the values the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Vectors.Dimension < 1 {
		return errortypes.ConfigError(fmt.Errorf("vectors.dimension must be positive, got %d", c.Vectors.Dimension), "invalid configuration")
	}
	if c.Preprocess.ShortSentenceTokens < 0 {
		return errortypes.ConfigError(fmt.Errorf("preprocess.short_sentence_tokens must not be negative"), "invalid configuration")
	}
	if c.Clustering.Tolerance < 0 {
		return errortypes.ConfigError(fmt.Errorf("clustering.tolerance must not be negative"), "invalid configuration")
	}
	if _, err := evaluate.ParseSmoothing(c.Evaluation.Smoothing); err != nil {
		return errortypes.ConfigError(err, "invalid configuration")
	}
	if _, err := c.DocumentTimeout(); err != nil {
		return err
	}
	return nil
}

// DocumentTimeout parses Batch.DocumentTimeout.
func (c *Config) DocumentTimeout() (time.Duration, error) {
	if c.Batch.DocumentTimeout == "" {
		return time.ParseDuration(DefaultDocumentTimeout)
	}
	d, err := time.ParseDuration(c.Batch.DocumentTimeout)
	if err != nil || d <= 0 {
		if err == nil {
			err = fmt.Errorf("duration %q is not positive", c.Batch.DocumentTimeout)
		}
		return 0, errortypes.ConfigError(err, "invalid batch.document_timeout")
	}
	return d, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// NewLogger builds the process logger described by the logging section.
func (c *Config) NewLogger() *slog.Logger {
	return logger.FromSettings(c.Logging.Level, c.Logging.Format, os.Stderr)
}
