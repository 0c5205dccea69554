package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 0.01
	DefaultFrameDt      = 1.0 / 60.0
	DefaultPerNode      = 4
	DefaultPolicy       = "composite"
	DefaultPrototype    = "default"
	DefaultSourceType   = "synthetic"
	DefaultNeurons      = 512
	DefaultRate         = 4.0
	DefaultDuration     = 10.0
	DefaultSpacing      = 1.0
	DefaultMinLife      = 0.4
	DefaultLifeInterval = 0.6
)

type Config struct {
	Playback   PlaybackConfig             `yaml:"playback"`
	Particles  ParticlesConfig            `yaml:"particles"`
	Prototypes map[string]PrototypeConfig `yaml:"prototypes"`
	Source     SourceConfig               `yaml:"source"`
}

// PlaybackConfig controls the simulated clock. When End <= Start the span of
// the loaded spikes is used instead.
type PlaybackConfig struct {
	Dt       float64 `yaml:"dt"`
	FrameDt  float64 `yaml:"frame_dt"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	Loop     bool    `yaml:"loop"`
	AutoPlay bool    `yaml:"autoplay"`
}

type ParticlesConfig struct {
	PerNode   int     `yaml:"per_node"`
	Policy    string  `yaml:"policy"`
	Prototype string  `yaml:"prototype"`
	Seed      int64   `yaml:"seed"`
	NodeColor Color   `yaml:"node_color"`
	NodeSize  float32 `yaml:"node_size"`
	Still     bool    `yaml:"still"`
	// MaxEmissionCycles bounds emissions per node; 0 means unlimited.
	MaxEmissionCycles int `yaml:"max_emission_cycles"`
}

type SourceConfig struct {
	Type      string          `yaml:"type"`
	Spikes    string          `yaml:"spikes"`
	Positions string          `yaml:"positions"`
	SQLite    string          `yaml:"sqlite"`
	Dataset   string          `yaml:"dataset"`
	Synthetic SyntheticConfig `yaml:"synthetic"`
}

type SyntheticConfig struct {
	Neurons     int     `yaml:"neurons"`
	Rate        float64 `yaml:"rate"`
	Duration    float64 `yaml:"duration"`
	Spacing     float32 `yaml:"spacing"`
	BurstPeriod float64 `yaml:"burst_period"`
	Seed        int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Dt:       DefaultDt,
			FrameDt:  DefaultFrameDt,
			AutoPlay: true,
		},
		Particles: ParticlesConfig{
			PerNode:   DefaultPerNode,
			Policy:    DefaultPolicy,
			Prototype: DefaultPrototype,
			Seed:      1,
			NodeColor: Color{R: 0.05, G: 0.05, B: 0.08, A: 0.2},
		},
		Prototypes: map[string]PrototypeConfig{
			DefaultPrototype: DefaultPrototypeConfig(),
		},
		Source: SourceConfig{
			Type: DefaultSourceType,
			Synthetic: SyntheticConfig{
				Neurons:  DefaultNeurons,
				Rate:     DefaultRate,
				Duration: DefaultDuration,
				Spacing:  DefaultSpacing,
				Seed:     1,
			},
		},
	}
}

// DefaultPrototypeConfig is a warm flash that cools and fades.
func DefaultPrototypeConfig() PrototypeConfig {
	return PrototypeConfig{
		MinLife:      DefaultMinLife,
		LifeInterval: DefaultLifeInterval,
		Combine:      "add",
		Color: []ColorPoint{
			{At: 0, Value: Color{R: 1, G: 0.85, B: 0.3, A: 1}},
			{At: 0.3, Value: Color{R: 1, G: 0.35, B: 0.1, A: 0.8}},
			{At: 1, Value: Color{R: 0.2, G: 0.1, B: 0.45, A: 0.1}},
		},
		Size: []ScalarPoint{
			{At: 0, Value: 1.5},
			{At: 1, Value: 0.3},
		},
		Velocity: []ScalarPoint{
			{At: 0, Value: 1.5},
			{At: 1, Value: 0},
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes the file at path on top of base, so fields the file leaves
// out keep base's values. base is modified and returned.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that would make engine setup fail.
func (c *Config) Validate() error {
	if c.Playback.Dt <= 0 {
		return fmt.Errorf("playback.dt must be positive, got %g", c.Playback.Dt)
	}
	if c.Playback.FrameDt < 0 {
		return fmt.Errorf("playback.frame_dt must not be negative, got %g", c.Playback.FrameDt)
	}
	if c.Particles.PerNode < 0 {
		return fmt.Errorf("particles.per_node must not be negative, got %d", c.Particles.PerNode)
	}
	if _, ok := c.Prototypes[c.Particles.Prototype]; !ok {
		return fmt.Errorf("particles.prototype %q is not defined", c.Particles.Prototype)
	}
	return nil
}

// ActivePrototype returns the prototype named by particles.prototype.
func (c *Config) ActivePrototype() (PrototypeConfig, bool) {
	p, ok := c.Prototypes[c.Particles.Prototype]
	return p, ok
}
