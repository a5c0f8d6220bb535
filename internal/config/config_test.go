package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Vectors.Path != DefaultVectorsPath || cfg.Vectors.Dimension != 25 {
		t.Errorf("unexpected vector defaults: %+v", cfg.Vectors)
	}
	if cfg.Preprocess.ShortSentenceTokens != 2 {
		t.Errorf("ShortSentenceTokens = %d, want 2", cfg.Preprocess.ShortSentenceTokens)
	}
	if cfg.Clustering.Seed != 123 || cfg.Clustering.Separator != " " {
		t.Errorf("unexpected clustering defaults: %+v", cfg.Clustering)
	}
	if cfg.Evaluation.MaxOrder != 4 || cfg.Evaluation.Smoothing != "epsilon" {
		t.Errorf("unexpected evaluation defaults: %+v", cfg.Evaluation)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	if d, err := cfg.DocumentTimeout(); err != nil || d != 30*time.Second {
		t.Errorf("DocumentTimeout() = %v, %v, want 30s", d, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimension", func(c *Config) { c.Vectors.Dimension = 0 }},
		{"negative cutoff", func(c *Config) { c.Preprocess.ShortSentenceTokens = -1 }},
		{"negative tolerance", func(c *Config) { c.Clustering.Tolerance = -1 }},
		{"unknown smoothing", func(c *Config) { c.Evaluation.Smoothing = "magic" }},
		{"bad timeout", func(c *Config) { c.Batch.DocumentTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Batch.DocumentTimeout = "-5s" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := NewConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if errortypes.TypeOf(err) != errortypes.ErrorTypeConfig {
				t.Errorf("Validate() error = %v, want config error", err)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	if cfg.Vectors.Dimension != DefaultVectorsDimension || cfg.Store.SQLitePath != DefaultSQLitePath {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := NewConfig()
	cfg.Vectors.Path = "/data/glove.txt.gz"
	cfg.Vectors.Dimension = 50
	cfg.Batch.Workers = 8
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	if loaded.Vectors.Path != "/data/glove.txt.gz" || loaded.Vectors.Dimension != 50 || loaded.Batch.Workers != 8 {
		t.Errorf("loaded config does not match saved one: %+v", loaded)
	}
}
