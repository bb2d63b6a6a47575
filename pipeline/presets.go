package pipeline

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/transforms"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Presets returns the names of the bundled pipeline presets, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadPreset builds a bundled preset against the registry.
func LoadPreset(r *Registry, name string) (*transforms.Compose, error) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, errors.Errorf("unknown preset %q, available: %v", name, Presets())
	}
	return Load(r, data)
}
