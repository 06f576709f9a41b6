// Command mcphost-bridge runs the HTTP/SSE/WS bridge in front of an
// embedded MCP host, exposing JSON-RPC, live event streaming, and the
// legacy read-only views described in the bridge's external interfaces.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrWong99/mcphost/internal/bridge/httpserver"
	"github.com/MrWong99/mcphost/internal/bridge/rpc"
	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/internal/bridge/sse"
	"github.com/MrWong99/mcphost/internal/config"
	"github.com/MrWong99/mcphost/internal/health"
	"github.com/MrWong99/mcphost/internal/hostmetrics"
	"github.com/MrWong99/mcphost/internal/supervisor"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcphost-bridge: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("mcphost-bridge starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"servers", len(cfg.Host.Servers),
	)

	shutdownProvider, err := hostmetrics.InitProvider(context.Background(), hostmetrics.ProviderConfig{
		ServiceName:    cfg.Host.Name,
		ServiceVersion: cfg.Host.Version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry providers", "err", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownProvider(ctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := hostmetrics.NewMetrics()
	if err != nil {
		slog.Error("failed to register metrics instruments", "err", err)
		return 1
	}

	hostConfig := cfg.Host.ToHostConfig()
	hostConfig.SamplingTimeout = time.Duration(cfg.Bridge.SamplingTimeoutMs) * time.Millisecond
	host := mcphost.New(hostConfig)
	sessions := session.NewManager(time.Duration(cfg.Bridge.SessionIdleTTLMs) * time.Millisecond)

	router := rpc.NewRouter(host, sessions, mcphost.Implementation{Name: cfg.Host.Name, Version: cfg.Host.Version}, hostConfig.HostCapabilities)
	wsHandler := sse.NewWSHandler(sessions, host.SamplingBroker())

	healthHandler := health.New(health.Checker{
		Name: "mcp_servers",
		Check: func(ctx context.Context) error {
			if len(cfg.Host.Servers) > 0 && len(host.ConnectedServers()) == 0 {
				return errors.New("no MCP servers connected")
			}
			return nil
		},
	})

	srv := httpserver.New(host, sessions, router, wsHandler, host.SamplingBroker(), metrics, healthHandler, httpserver.Config{
		Endpoint: cfg.Bridge.Endpoint,
		AuthOn:   cfg.Auth.Enabled(),
		APIKeys:  cfg.Auth.APIKeys,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: srv.Handler(),
	}

	var watcher *config.Watcher
	if *configPath != "" {
		if w, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
			diff := config.Diff(old, new)
			slog.Info("configuration file changed", "servers_changed", diff.ServersChanged, "log_level_changed", diff.LogLevelChanged)
		}); err == nil {
			watcher = w
		}
	}

	sup := supervisor.New(httpServer, host, sessions, watcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Run(ctx); err != nil {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
