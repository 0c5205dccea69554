package registry

import (
	"fmt"
	"sort"

	"github.com/san-kum/spikeviz/internal/config"
	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/particles"
)

type Registry struct {
	policies map[string]func() particles.UpdatePolicy
	combines map[string]particles.CombineOp
	sources  map[string]func(config.SourceConfig) (dataset.Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]func() particles.UpdatePolicy),
		combines: make(map[string]particles.CombineOp),
		sources:  make(map[string]func(config.SourceConfig) (dataset.Source, error)),
	}

	r.policies["composite"] = func() particles.UpdatePolicy { return particles.Composite{} }
	r.policies["direct"] = func() particles.UpdatePolicy { return particles.DirectValued{} }

	for _, op := range []particles.CombineOp{particles.CombineAdd, particles.CombineSub, particles.CombineMul, particles.CombineDiv} {
		r.combines[op.String()] = op
	}

	r.sources["csv"] = func(sc config.SourceConfig) (dataset.Source, error) {
		if sc.Spikes == "" {
			return nil, fmt.Errorf("source.spikes: %w", dataset.ErrMissingPath)
		}
		return &dataset.CSVSource{SpikesPath: sc.Spikes, PositionsPath: sc.Positions}, nil
	}
	r.sources["sqlite"] = func(sc config.SourceConfig) (dataset.Source, error) {
		if sc.SQLite == "" {
			return nil, fmt.Errorf("source.sqlite: %w", dataset.ErrMissingPath)
		}
		return &dataset.SQLiteSource{Path: sc.SQLite, Dataset: sc.Dataset}, nil
	}
	r.sources["synthetic"] = func(sc config.SourceConfig) (dataset.Source, error) {
		s := sc.Synthetic
		return &dataset.SyntheticSource{
			Neurons:     s.Neurons,
			Rate:        s.Rate,
			Duration:    s.Duration,
			Spacing:     s.Spacing,
			BurstPeriod: s.BurstPeriod,
			Seed:        s.Seed,
		}, nil
	}

	return r
}

func (r *Registry) GetPolicy(name string) (particles.UpdatePolicy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown update policy: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetCombineOp(name string) (particles.CombineOp, error) {
	if op, ok := r.combines[name]; ok {
		return op, nil
	}
	return particles.ParseCombineOp(name)
}

// GetSource builds the dataset source described by sc.
func (r *Registry) GetSource(sc config.SourceConfig) (dataset.Source, error) {
	fn, ok := r.sources[sc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnsupportedSource, sc.Type)
	}
	return fn(sc)
}

func (r *Registry) ListPolicies() []string { return sortedKeys(r.policies) }

func (r *Registry) ListCombineOps() []string { return sortedKeys(r.combines) }

func (r *Registry) ListSources() []string { return sortedKeys(r.sources) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
