package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/risk"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RiskSection carries the aggregation parameters and the Monte Carlo
// settings.
type RiskSection struct {
	risk.Config `yaml:",inline"`
	MonteCarlo  risk.UncertaintyOptions `yaml:"monte_carlo"`
}

// LoreSection carries the lore scoring constants. Credibility weights are
// keyed by source type name and override the built-in table.
type LoreSection struct {
	lore.Config        `yaml:",inline"`
	CredibilityWeights map[string]float64 `yaml:"credibility"`
	Reduction          string             `yaml:"reduction"`
}

// JobsConfig bounds batch work.
type JobsConfig struct {
	Concurrency int `yaml:"concurrency"`
	EventBuffer int `yaml:"event_buffer"`
}

// Config contains runtime configuration. It is loaded once and the scoring
// sections are handed to the calculators by value.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// StorageRoot is where georisk.db is kept.
	StorageRoot string `yaml:"storage_root"`

	Risk RiskSection `yaml:"risk"`
	Lore LoreSection `yaml:"lore"`
	Jobs JobsConfig  `yaml:"jobs"`
}

// DefaultConfig returns a Config populated with the stock scoring constants.
func DefaultConfig() *Config {
	return &Config{
		Server:      ServerConfig{Addr: ":8080"},
		StorageRoot: "~/.local/share/georisk",
		Risk: RiskSection{
			Config:     risk.DefaultConfig(),
			MonteCarlo: risk.DefaultUncertaintyOptions(),
		},
		Lore: LoreSection{
			Config:    lore.DefaultConfig(),
			Reduction: string(lore.ReduceMax),
		},
		Jobs: JobsConfig{Concurrency: 4, EventBuffer: 16},
	}
}

// LoadConfig reads configuration from a YAML file over the defaults.
// A missing file yields the defaults and no error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills fields whose zero value is meaningless.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = def.StorageRoot
	}

	if cfg.Risk.MonteCarlo.Samples == 0 {
		cfg.Risk.MonteCarlo.Samples = def.Risk.MonteCarlo.Samples
	}

	if cfg.Lore.DecayYears == 0 {
		cfg.Lore.DecayYears = def.Lore.DecayYears
	}
	if cfg.Lore.UncertaintyScale == 0 {
		cfg.Lore.UncertaintyScale = def.Lore.UncertaintyScale
	}
	if cfg.Lore.SpatialSigmaKm == 0 {
		cfg.Lore.SpatialSigmaKm = def.Lore.SpatialSigmaKm
	}
	if cfg.Lore.CorroborationScale == 0 {
		cfg.Lore.CorroborationScale = def.Lore.CorroborationScale
	}
	if cfg.Lore.CulturalMemory.Decay == 0 {
		cfg.Lore.CulturalMemory.Decay = def.Lore.CulturalMemory.Decay
	}
	if cfg.Lore.Reduction == "" {
		cfg.Lore.Reduction = def.Lore.Reduction
	}

	if cfg.Jobs.Concurrency <= 0 {
		cfg.Jobs.Concurrency = def.Jobs.Concurrency
	}
	if cfg.Jobs.EventBuffer <= 0 {
		cfg.Jobs.EventBuffer = def.Jobs.EventBuffer
	}
}

func unit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
	}
	return nil
}

// ValidateConfig rejects inconsistent settings.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	rc := cfg.Risk.Config
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"risk.tau_h", rc.TauH},
		{"risk.tau_l", rc.TauL},
		{"risk.tau_v", rc.TauV},
		{"risk.lambda_mix", rc.LambdaMix},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}
	if rc.KappaSynergy < 0 {
		return fmt.Errorf("risk.kappa_synergy must be >= 0, got %v", rc.KappaSynergy)
	}
	if rc.Alpha <= 0 || rc.Beta <= 0 || rc.Gamma <= 0 {
		return errors.New("risk.alpha, risk.beta and risk.gamma must be > 0")
	}

	mc := cfg.Risk.MonteCarlo
	if mc.Samples < 1 {
		return fmt.Errorf("risk.monte_carlo.samples must be >= 1, got %d", mc.Samples)
	}
	if mc.SigmaH < 0 || mc.SigmaL < 0 || mc.SigmaV < 0 {
		return errors.New("risk.monte_carlo sigmas must be >= 0")
	}

	w := cfg.Lore.Weights
	if w.Recent < 0 || w.Credibility < 0 || w.Spatial < 0 {
		return errors.New("lore.weights must be >= 0")
	}
	if cfg.Lore.DecayYears <= 0 || cfg.Lore.SpatialSigmaKm <= 0 || cfg.Lore.UncertaintyScale <= 0 {
		return errors.New("lore.decay_years, lore.spatial_sigma_km and lore.uncertainty_scale_years must be > 0")
	}
	for name, v := range cfg.Lore.CredibilityWeights {
		if err := unit("lore.credibility."+name, v); err != nil {
			return err
		}
	}
	if _, err := cfg.LoreConfig(); err != nil {
		return err
	}
	if _, err := lore.ParseReductionPolicy(cfg.Lore.Reduction); err != nil {
		return fmt.Errorf("lore.reduction: %w", err)
	}

	if cfg.Jobs.Concurrency < 1 {
		return fmt.Errorf("jobs.concurrency must be >= 1, got %d", cfg.Jobs.Concurrency)
	}
	return nil
}

// LoreConfig returns the lore scoring constants with credibility overrides
// applied.
func (c *Config) LoreConfig() (lore.Config, error) {
	lc := c.Lore.Config
	table, err := lc.Credibility.WithOverrides(c.Lore.CredibilityWeights)
	if err != nil {
		return lore.Config{}, fmt.Errorf("lore.credibility: %w", err)
	}
	lc.Credibility = table
	return lc, nil
}

// DBPath returns the SQLite database path under StorageRoot with a leading
// ~ expanded.
func (c *Config) DBPath() (string, error) {
	root := c.StorageRoot
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return filepath.Join(root, "georisk.db"), nil
}
