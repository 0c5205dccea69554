package config

import "sort"

// Presets are partial configurations keyed by source type and preset name.
// GetPreset fills the remaining fields from DefaultConfig.
var Presets = map[string]map[string]*Config{
	"synthetic": {
		"small": {
			Playback: PlaybackConfig{Dt: 0.01, Loop: true},
			Source:   SourceConfig{Type: "synthetic", Synthetic: SyntheticConfig{Neurons: 64, Rate: 3, Duration: 5, Spacing: 1, Seed: 1}},
		},
		"dense": {
			Playback:  PlaybackConfig{Dt: 0.005},
			Particles: ParticlesConfig{PerNode: 2},
			Source:    SourceConfig{Type: "synthetic", Synthetic: SyntheticConfig{Neurons: 4096, Rate: 8, Duration: 10, Spacing: 0.5, Seed: 2}},
		},
		"rhythm": {
			Playback: PlaybackConfig{Dt: 0.01, Loop: true},
			Source:   SourceConfig{Type: "synthetic", Synthetic: SyntheticConfig{Neurons: 512, Rate: 1, Duration: 8, Spacing: 1, BurstPeriod: 0.25, Seed: 3}},
		},
		"static": {
			Playback:  PlaybackConfig{Dt: 0.02},
			Particles: ParticlesConfig{PerNode: 1, Policy: "direct", Still: true},
			Source:    SourceConfig{Type: "synthetic", Synthetic: SyntheticConfig{Neurons: 343, Rate: 5, Duration: 6, Spacing: 1, Seed: 4}},
		},
	},
}

func GetPreset(source, preset string) *Config {
	sourcePresets, ok := Presets[source]
	if !ok {
		return nil
	}
	p, ok := sourcePresets[preset]
	if !ok {
		return nil
	}
	return merge(DefaultConfig(), p)
}

func ListPresets(source string) []string {
	sourcePresets, ok := Presets[source]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(sourcePresets))
	for name := range sourcePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// merge copies the non-zero fields of p onto base.
func merge(base, p *Config) *Config {
	if p.Playback.Dt != 0 {
		base.Playback.Dt = p.Playback.Dt
	}
	if p.Playback.FrameDt != 0 {
		base.Playback.FrameDt = p.Playback.FrameDt
	}
	if p.Playback.End > p.Playback.Start {
		base.Playback.Start, base.Playback.End = p.Playback.Start, p.Playback.End
	}
	base.Playback.Loop = base.Playback.Loop || p.Playback.Loop

	if p.Particles.PerNode != 0 {
		base.Particles.PerNode = p.Particles.PerNode
	}
	if p.Particles.Policy != "" {
		base.Particles.Policy = p.Particles.Policy
	}
	if p.Particles.Prototype != "" {
		base.Particles.Prototype = p.Particles.Prototype
	}
	base.Particles.Still = base.Particles.Still || p.Particles.Still

	for name, proto := range p.Prototypes {
		base.Prototypes[name] = proto
	}
	if p.Source.Type != "" {
		base.Source = p.Source
	}
	return base
}
