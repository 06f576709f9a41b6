package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "MCPHOST_"

// Load assembles a [Config] from, in increasing precedence: compiled-in
// defaults, an optional YAML file at path (skipped if path is empty, and
// skipped with a warning if the file does not exist), and MCPHOST_-prefixed
// environment variables. It then runs [Validate] and returns any
// accumulated error.
//
// Env var mapping follows koanf's dotted-path convention, e.g.
// MCPHOST_SERVER_LISTEN_ADDR -> server.listen_addr,
// MCPHOST_HOST_SAMPLING_ENABLED -> host.sampling_enabled. MCPHOST_API_KEYS
// is special-cased to a comma-separated list feeding auth.api_keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load file %q: %w", path, err)
			}
		} else if errors.Is(err, os.ErrNotExist) {
			slog.Warn("config file not found, using defaults and environment", "path", path)
		} else {
			return nil, fmt.Errorf("config: stat %q: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform maps an MCPHOST_-prefixed environment variable to its koanf
// dotted key, special-casing MCPHOST_API_KEYS into a slice.
func envTransform(rawKey, value string) (string, interface{}) {
	key := strings.ToLower(strings.Replace(strings.TrimPrefix(rawKey, envPrefix), "_", ".", 1))
	if key == "api.keys" {
		return "auth.api_keys", strings.Split(value, ",")
	}
	return key, value
}
