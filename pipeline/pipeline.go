// Package pipeline builds transform chains from YAML configuration. Each
// entry of the `transforms` list names a registered builder and carries its
// settings; container entries nest further lists, so whole augmentation
// presets can live in a config file. Validation happens at load time, before
// any sample is touched.
package pipeline

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nbaohan713/vision/transforms"
)

// Builder constructs one transform from its decoded YAML settings.
type Builder func(r *Registry, cfg map[string]any) (transforms.Transform, error)

// Registry maps transform names to builders. Custom transforms register
// alongside the built-ins and become addressable from config files.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register binds a builder to a name, replacing any previous binding.
func (r *Registry) Register(name string, b Builder) error {
	if name == "" {
		return errors.New("transform name cannot be empty")
	}
	if b == nil {
		return errors.Errorf("builder for %q cannot be nil", name)
	}
	r.builders[name] = b
	return nil
}

// Build constructs one transform entry.
func (r *Registry) Build(cfg map[string]any) (transforms.Transform, error) {
	name, _ := cfg["name"].(string)
	if name == "" {
		return nil, errors.New("transform entry is missing a name")
	}
	b, ok := r.builders[name]
	if !ok {
		return nil, errors.Errorf("unknown transform %q", name)
	}
	t, err := b(r, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "transform %q", name)
	}
	return t, nil
}

// BuildList constructs a sequence of transform entries.
func (r *Registry) BuildList(entries []map[string]any) ([]transforms.Transform, error) {
	out := make([]transforms.Transform, 0, len(entries))
	for i, entry := range entries {
		t, err := r.Build(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		out = append(out, t)
	}
	return out, nil
}

type fileConfig struct {
	Transforms []map[string]any `yaml:"transforms"`
}

// Load parses a YAML pipeline description and builds it into a Compose
// chain against the registry.
//
// Arguments:
//   - r: The registry resolving each entry's name to its builder.
//   - data: The YAML document; its transforms list must be non-empty.
//
// Returns:
//   - *transforms.Compose: The built chain, ready to apply to samples.
//   - error: An error if the YAML is malformed or any entry fails to build.
func Load(r *Registry, data []byte) (*transforms.Compose, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing pipeline config")
	}
	if len(cfg.Transforms) == 0 {
		return nil, errors.New("pipeline config declares no transforms")
	}
	ts, err := r.BuildList(cfg.Transforms)
	if err != nil {
		return nil, err
	}
	return transforms.NewCompose(ts)
}
