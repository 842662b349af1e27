// Package config provides configuration loading and access for the tree engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tree-engine configuration parameters.
type Config struct {
	Tree      TreeConfig      `yaml:"tree"`
	Gravity   GravityConfig   `yaml:"gravity"`
	Neighbors NeighborsConfig `yaml:"neighbors"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// TreeConfig holds the costzone tree's structural parameters.
type TreeConfig struct {
	RootCenter      [3]float64 `yaml:"root_center"`
	RootSize        float64    `yaml:"root_size"`
	ThreadCount     int        `yaml:"thread_count"`
	CellsPerThread  int        `yaml:"cells_per_thread"`
	CostMarkLow     float64    `yaml:"cost_mark_low"`
	CostMarkHigh    float64    `yaml:"cost_mark_high"`
	MaxDepth        int        `yaml:"max_depth"`
}

// GravityConfig holds gravity-evaluation parameters.
type GravityConfig struct {
	Theta           float64 `yaml:"theta"`
	GravConst       float64 `yaml:"grav_const"`
	Epsilon         float64 `yaml:"epsilon"`
	Softening       string  `yaml:"softening"`        // "none", "plummer", "spline"
	MultipoleOrder  string  `yaml:"multipole_order"`  // "monopole", "quadrupole", "octupole"
}

// NeighborsConfig holds SPH neighbor-search parameters.
type NeighborsConfig struct {
	MaxResults int `yaml:"max_results"`
}

// TelemetryConfig holds round-telemetry parameters.
type TelemetryConfig struct {
	OutputDir   string `yaml:"output_dir"`
	WindowTicks int    `yaml:"window_ticks"`
}

// DerivedConfig holds values computed once after loading.
type DerivedConfig struct {
	// NormCellCost is 1 / (ThreadCount * CellsPerThread), the
	// normalization factor the cost-band marks are scaled by.
	NormCellCost float64
	CostMin      float64
	CostMax      float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	norm := 1.0 / float64(c.Tree.ThreadCount*c.Tree.CellsPerThread)
	c.Derived.NormCellCost = norm
	c.Derived.CostMin = norm * c.Tree.CostMarkLow
	c.Derived.CostMax = norm * c.Tree.CostMarkHigh
}

// WriteYAML marshals the config to a YAML file at path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
