// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Agent      AgentConfig      `yaml:"agent"`
	Fitness    FitnessConfig    `yaml:"fitness"`
	Seed       SeedConfig       `yaml:"seed"`
	Elite      EliteConfig      `yaml:"elite"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds grid dimensions, the episode length, and the weighted
// tile distribution used when generating the interior of the grid.
type WorldConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	GenTime int `yaml:"gen_time"` // steps per generation episode

	BoundaryWeight float64 `yaml:"boundary_weight"`
	DirtyWeight    float64 `yaml:"dirty_weight"`
	CleanWeight    float64 `yaml:"clean_weight"`
}

// PopulationConfig holds population management and breeding parameters.
type PopulationConfig struct {
	Size           int     `yaml:"size"`
	CloneFraction  float64 `yaml:"clone_fraction"`  // top fraction cloned verbatim
	BreedFraction  float64 `yaml:"breed_fraction"`  // top fraction forming the breeding pool
	RandomFraction float64 `yaml:"random_fraction"` // fraction of fresh random genomes
	SuccessRamp    float64 `yaml:"success_ramp"`    // best-rank weight relative to worst
	GeneLenMin     int     `yaml:"gene_len_min"`    // random coding region length range
	GeneLenMax     int     `yaml:"gene_len_max"`
}

// AgentConfig holds the agent runtime capacities.
// Keep the exec stack shallow: with stack depth d and queue length L an
// agent performs O(L * d * 2^d) function calls per tick.
type AgentConfig struct {
	ExecStackSize int     `yaml:"exec_stack_size"`
	NumInitFuns   int     `yaml:"num_init_funs"`
	GeneQueueSize int     `yaml:"gene_queue_size"`
	MemSize       int     `yaml:"mem_size"`
	SuckFailProb  float64 `yaml:"suck_fail_prob"`
}

// FitnessConfig holds the per-counter fitness weights.
type FitnessConfig struct {
	Dirt         float64 `yaml:"dirt"`
	FwdMoves     float64 `yaml:"fwd_moves"`
	BckwdMoves   float64 `yaml:"bckwd_moves"`
	Bumps        float64 `yaml:"bumps"`
	LeftTurns    float64 `yaml:"left_turns"`
	RightTurns   float64 `yaml:"right_turns"`
	Sucks        float64 `yaml:"sucks"`
	Thoughts     float64 `yaml:"thoughts"`
	GenomeSize   float64 `yaml:"genome_size"`
	TilesCovered float64 `yaml:"tiles_covered"`
}

// SeedConfig holds the initial genome text. An empty coding region seeds the
// population with random coding regions instead.
type SeedConfig struct {
	Metagenome string `yaml:"metagenome"`
	Coding     string `yaml:"coding"`
}

// EliteConfig holds the rolling elite archive settings.
type EliteConfig struct {
	Size int `yaml:"size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TilePx  float32 // on-screen tile edge in pixels
	OriginX float32 // grid top-left on screen
	OriginY float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	px := float32(c.Screen.Width) / float32(c.World.Width)
	if py := float32(c.Screen.Height) / float32(c.World.Height); py < px {
		px = py
	}
	c.Derived.TilePx = px
	c.Derived.OriginX = (float32(c.Screen.Width) - px*float32(c.World.Width)) / 2
	c.Derived.OriginY = (float32(c.Screen.Height) - px*float32(c.World.Height)) / 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
