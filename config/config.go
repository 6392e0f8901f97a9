// Package config loads the service configuration from JSON or YAML files
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/creditlab/riskband/core/analysis"
	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/binning"
	"github.com/creditlab/riskband/core/dataset"
	"github.com/creditlab/riskband/core/metrics"
)

type Config struct {
	Dataset dataset.Config  `json:"dataset"`
	Binning binning.Config  `json:"binning"`
	Model   analysis.Config `json:"model"`
	Storage store.Config    `json:"storage"`
	Metrics metrics.Config  `json:"metrics"`
	API     APIConfig       `json:"api"`
}

// APIConfig defines the HTTP surface over stored runs.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// Token protects the endpoints with bearer auth when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("RB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Dataset.SetDefaults()
	cfg.Binning.SetDefaults()
	cfg.Model.SetDefaults()
	cfg.Storage.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Dataset.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Binning.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Model.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
