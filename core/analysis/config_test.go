package analysis

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConfigDecodeYAML(t *testing.T) {
	data := "alpha: 0.01\nmax_iterations: 50\ntolerance: 1e-6\nthreshold: 0.4\n"
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if cfg.Alpha != 0.01 || cfg.MaxIterations != 50 || cfg.Threshold != 0.4 {
		t.Fatalf("bad cfg %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigDecodeJSON(t *testing.T) {
	data := `{"alpha":0.1,"threshold":0.6}`
	var cfg Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	cfg.SetDefaults()
	if cfg.Alpha != 0.1 || cfg.MaxIterations != 25 {
		t.Fatalf("bad cfg %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := []Config{
		{Alpha: 1.2, MaxIterations: 25, Tolerance: 1e-8, Threshold: 0.5},
		{Alpha: 0.05, MaxIterations: 0, Tolerance: 1e-8, Threshold: 0.5},
		{Alpha: 0.05, MaxIterations: 25, Tolerance: -1, Threshold: 0.5},
		{Alpha: 0.05, MaxIterations: 25, Tolerance: 1e-8, Threshold: 1.5},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
