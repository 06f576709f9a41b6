package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MrWong99/mcphost/internal/config"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":3000" {
		t.Errorf("expected default listen_addr :3000, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Bridge.Endpoint != "/mcp" {
		t.Errorf("expected default endpoint /mcp, got %q", cfg.Bridge.Endpoint)
	}
	if cfg.Auth.Enabled() {
		t.Error("expected auth disabled by default with no configured keys")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
server:
  listen_addr: ":9090"
host:
  servers:
    - id: files
      transport: stdio
      command: mcp-server-filesystem
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("expected overridden listen_addr, got %q", cfg.Server.ListenAddr)
	}
	if len(cfg.Host.Servers) != 1 || cfg.Host.Servers[0].ID != "files" {
		t.Fatalf("expected one server entry 'files', got %+v", cfg.Host.Servers)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if cfg.Server.ListenAddr != ":3000" {
		t.Errorf("expected default listen_addr, got %q", cfg.Server.ListenAddr)
	}
}

func TestAuthEnabledDefaultsToAPIKeysPresence(t *testing.T) {
	a := config.AuthConfig{}
	if a.Enabled() {
		t.Error("expected auth disabled with no keys and Required unset")
	}
	a.APIKeys = []string{"abc"}
	if !a.Enabled() {
		t.Error("expected auth enabled once keys are configured")
	}
	disabled := false
	a.Required = &disabled
	if a.Enabled() {
		t.Error("explicit Required=false should override key presence")
	}
}

func TestHostConfigToHostConfigConvertsServers(t *testing.T) {
	hc := config.HostConfig{
		Name:    "test",
		Version: "1.0.0",
		Servers: []config.ServerEntry{
			{ID: "a", Transport: "stdio", Command: "foo"},
		},
		SamplingEnabled:  true,
		RootsListChanged: true,
	}
	out := hc.ToHostConfig()
	if out.HostInfo.Name != "test" {
		t.Errorf("expected HostInfo.Name 'test', got %q", out.HostInfo.Name)
	}
	if out.HostCapabilities.Sampling == nil {
		t.Error("expected Sampling capability to be set")
	}
	if out.HostCapabilities.Roots == nil || !out.HostCapabilities.Roots.ListChanged {
		t.Error("expected Roots.ListChanged to be true")
	}
	if len(out.Servers) != 1 || out.Servers[0].ID != "a" {
		t.Fatalf("unexpected servers: %+v", out.Servers)
	}
}
