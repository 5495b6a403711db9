package settings

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed configs/*.yaml
var configFS embed.FS

// BuiltinConfigs returns the settings presets shipped with the
// binary, sorted by label.
func BuiltinConfigs() ([]Config, error) {
	entries, err := configFS.ReadDir("configs")
	if err != nil {
		return nil, fmt.Errorf("listing builtin configs: %w", err)
	}
	out := make([]Config, 0, len(entries))
	for _, entry := range entries {
		cfg, err := loadConfig("configs/" + entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func loadConfig(path string) (Config, error) {
	raw, err := configFS.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading builtin config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing builtin config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("builtin config %s: %w", path, err)
	}
	return cfg, nil
}
