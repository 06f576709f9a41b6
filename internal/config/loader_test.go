package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/mcphost/internal/config"
)

func TestValidate_DuplicateServerIDs(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - id: files
      transport: stdio
      command: a
    - id: files
      transport: stdio
      command: b
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for duplicate server ids, got nil")
	}
	if !strings.Contains(err.Error(), "duplicates") {
		t.Errorf("error should mention duplicates, got: %v", err)
	}
}

func TestValidate_StdioRequiresCommand(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - id: files
      transport: stdio
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for stdio server without command, got nil")
	}
	if !strings.Contains(err.Error(), "command is required") {
		t.Errorf("error should mention required command, got: %v", err)
	}
}

func TestValidate_StreamableHTTPRequiresURL(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - id: remote
      transport: streamable-http
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for streamable-http server without url, got nil")
	}
	if !strings.Contains(err.Error(), "url is required") {
		t.Errorf("error should mention required url, got: %v", err)
	}
}

func TestValidate_InvalidTransport(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - id: bad
      transport: carrier-pigeon
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for invalid transport, got nil")
	}
	if !strings.Contains(err.Error(), "is invalid") {
		t.Errorf("error should mention invalid transport, got: %v", err)
	}
}

func TestValidate_MissingServerID(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - transport: stdio
      command: a
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing server id, got nil")
	}
	if !strings.Contains(err.Error(), "id is required") {
		t.Errorf("error should mention required id, got: %v", err)
	}
}

func TestValidate_ValidConfigPasses(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
host:
  servers:
    - id: files
      transport: stdio
      command: mcp-server-filesystem
    - id: remote
      transport: sse
      url: "https://example.com/sse"
`)
	_, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
