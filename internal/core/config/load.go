package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// Profile overrides the profile named in the file or environment.
	Profile string
	// Environ replaces os.Environ for env overrides. Nil uses the process
	// environment.
	Environ map[string]string
}

// Load reads configuration from configPath and sets the data directory.
// Values are layered in this order: defaults, the built-in profile preset,
// the file, the file's own profiles section for the active profile, and
// finally STOREFRONT_* environment variables. A missing file yields the
// defaults.
func Load(configPath, dataDir string, opts LoadOptions) (*Config, error) {
	file, err := readFile(configPath)
	if err != nil {
		return nil, err
	}

	fileProfiles, err := extractProfiles(file)
	if err != nil {
		return nil, err
	}

	profile := opts.Profile
	if profile == "" {
		profile = lookupEnv(opts.Environ, EnvPrefix+"PROFILE")
	}
	if profile == "" {
		if p, ok := file["profile"].(string); ok {
			profile = p
		}
	}
	if profile == "" {
		profile = ProfileProduction
	}

	layered, err := toMap(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if preset, ok := presets[profile]; ok {
		mergeMaps(layered, preset)
	} else if _, ok := fileProfiles[profile]; !ok {
		return nil, fmt.Errorf("unknown profile %q", profile)
	}
	mergeMaps(layered, file)
	mergeMaps(layered, fileProfiles[profile])
	layered["profile"] = profile

	cfg, err := fromMap(layered)
	if err != nil {
		return nil, err
	}

	envOpts := env.Options{Prefix: EnvPrefix}
	if opts.Environ != nil {
		envOpts.Environment = opts.Environ
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Profile = profile
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// readFile decodes the config file into a generic map. YAML is used unless
// the file has a .toml extension.
func readFile(path string) (map[string]any, error) {
	out := map[string]any{}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		if out == nil {
			out = map[string]any{}
		}
	}

	return out, nil
}

// extractProfiles removes the profiles section from file and returns it.
func extractProfiles(file map[string]any) (map[string]map[string]any, error) {
	raw, ok := file["profiles"]
	delete(file, "profiles")
	if !ok || raw == nil {
		return nil, nil
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse config file: profiles must be a map")
	}

	out := make(map[string]map[string]any, len(section))
	for name, v := range section {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse config file: profile %q must be a map", name)
		}
		out[name] = m
	}
	return out, nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	return out, nil
}

func fromMap(m map[string]any) (Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func lookupEnv(environ map[string]string, key string) string {
	if environ != nil {
		return environ[key]
	}
	return os.Getenv(key)
}

// mergeMaps recursively merges src into dst.
// Nested maps are merged, while scalar and non-map values are replaced.
func mergeMaps(dst, src map[string]any) {
	if src == nil {
		return
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		if !srcIsMap {
			dst[key] = srcVal
			continue
		}

		dstMap, dstIsMap := dst[key].(map[string]any)
		if !dstIsMap {
			dst[key] = srcMap
			continue
		}

		mergeMaps(dstMap, srcMap)
	}
}
