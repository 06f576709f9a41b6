// Package config provides the configuration schema and layered loader for
// the mcphost HTTP/WebSocket bridge.
package config

import (
	"errors"
	"fmt"

	"github.com/MrWong99/mcphost/pkg/mcphost"
)

// LogLevel controls slog verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case "", LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

// Config is the root configuration for the mcphost bridge process. It is
// assembled by [Load] from struct defaults, an optional YAML file, and
// environment variable overrides, in that precedence order (lowest to
// highest).
type Config struct {
	Server ServerConfig  `koanf:"server"`
	Auth   AuthConfig    `koanf:"auth"`
	Bridge BridgeConfig  `koanf:"bridge"`
	Host   HostConfig    `koanf:"host"`
}

// ServerConfig holds network and logging settings for the bridge's HTTP
// listener.
type ServerConfig struct {
	ListenAddr string   `koanf:"listen_addr"`
	LogLevel   LogLevel `koanf:"log_level"`
}

// AuthConfig controls the optional X-API-Key / WS query-param authentication
// described in spec §6.
type AuthConfig struct {
	// APIKeys is the set of accepted keys. Comma-separated in the MCPHOST_API_KEYS
	// environment variable.
	APIKeys []string `koanf:"api_keys"`

	// Required forces authentication even if it would otherwise be inferred.
	// Unset (nil) defaults to "required iff len(APIKeys) > 0", matching
	// spec §6's "defaults to enabled iff any keys are configured".
	Required *bool `koanf:"required"`
}

// Enabled reports whether auth should be enforced, applying the documented
// default when Required is unset.
func (a AuthConfig) Enabled() bool {
	if a.Required != nil {
		return *a.Required
	}
	return len(a.APIKeys) > 0
}

// BridgeConfig holds the HTTP/SSE/WS bridge's protocol-level tunables, all
// optional per spec §6.
type BridgeConfig struct {
	// Endpoint is the path serving JSON-RPC POST/GET/DELETE. Default "/mcp".
	Endpoint string `koanf:"endpoint"`

	// SessionIdleTTLMs is how long an idle session survives before the
	// sweep timer reclaims it. Default 3600000 (1h).
	SessionIdleTTLMs int `koanf:"session_idle_ttl_ms"`

	// SamplingTimeoutMs bounds how long a sampling request waits for an
	// external sink to answer. Default 30000.
	//
	// Note: spec §4.2 documents the Sampling Broker's own default as 300s;
	// this environment-configurable value is the bridge-level override
	// surfaced per spec §6's "sampling request timeout in ms" variable and
	// takes precedence over the broker's built-in default when set.
	SamplingTimeoutMs int `koanf:"sampling_timeout_ms"`
}

// HostConfig is the YAML/env-friendly mirror of [mcphost.HostConfig]; see
// [HostConfig.ToHostConfig] for the conversion.
type HostConfig struct {
	Name    string         `koanf:"name"`
	Version string         `koanf:"version"`
	Servers []ServerEntry  `koanf:"servers"`

	SamplingEnabled    bool `koanf:"sampling_enabled"`
	RootsListChanged   bool `koanf:"roots_list_changed"`
}

// ServerEntry is the YAML/env-friendly mirror of [mcphost.ServerConfig].
type ServerEntry struct {
	ID        string            `koanf:"id"`
	Name      string            `koanf:"name"`
	Transport string            `koanf:"transport"`
	Command   string            `koanf:"command"`
	Args      []string          `koanf:"args"`
	Cwd       string            `koanf:"cwd"`
	Env       map[string]string `koanf:"env"`
	URL       string            `koanf:"url"`
	Headers   map[string]string `koanf:"headers"`
}

// ToHostConfig converts the YAML-friendly schema into [mcphost.HostConfig].
func (c HostConfig) ToHostConfig() mcphost.HostConfig {
	out := mcphost.HostConfig{
		HostInfo: mcphost.Implementation{Name: c.Name, Version: c.Version},
	}
	if c.SamplingEnabled {
		out.HostCapabilities.Sampling = &struct{}{}
	}
	out.HostCapabilities.Roots = &mcphost.RootsCapability{ListChanged: c.RootsListChanged}

	for _, s := range c.Servers {
		out.Servers = append(out.Servers, mcphost.ServerConfig{
			ID:        s.ID,
			Name:      s.Name,
			Transport: mcphost.Transport(s.Transport),
			Command:   s.Command,
			Args:      s.Args,
			Cwd:       s.Cwd,
			Env:       s.Env,
			URL:       s.URL,
			Headers:   s.Headers,
		})
	}
	return out
}

// defaultConfig returns the struct-literal defaults loaded first by [Load],
// before any file or environment overlay is applied.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":3000",
			LogLevel:   LogInfo,
		},
		Bridge: BridgeConfig{
			Endpoint:          "/mcp",
			SessionIdleTTLMs:  3600000,
			SamplingTimeoutMs: 30000,
		},
		Host: HostConfig{
			Name:             "mcphost-bridge",
			Version:          "1.0.0",
			SamplingEnabled:  true,
			RootsListChanged: true,
		},
	}
}

// Validate checks cfg for internal consistency, returning a joined error
// listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	seen := make(map[string]int, len(cfg.Host.Servers))
	for i, s := range cfg.Host.Servers {
		prefix := fmt.Sprintf("host.servers[%d]", i)
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
			continue
		}
		if prev, ok := seen[s.ID]; ok {
			errs = append(errs, fmt.Errorf("%s.id %q duplicates host.servers[%d]", prefix, s.ID, prev))
			continue
		}
		seen[s.ID] = i

		t := mcphost.Transport(s.Transport)
		if s.Transport != "" && !t.IsValid() {
			errs = append(errs, fmt.Errorf("%s.transport %q is invalid; valid values: stdio, sse, websocket, streamable-http", prefix, s.Transport))
			continue
		}
		if t == mcphost.TransportStdio && s.Command == "" {
			errs = append(errs, fmt.Errorf("%s.command is required when transport is stdio", prefix))
		}
		if (t == mcphost.TransportStreamableHTTP || t == mcphost.TransportSSE || t == mcphost.TransportWebsocket) && s.URL == "" {
			errs = append(errs, fmt.Errorf("%s.url is required when transport is %s", prefix, t))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
