package supervisor

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/pkg/mcphost/mock"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := &mock.Host{}
	sessions := session.NewManager(time.Hour)

	httpServer := &http.Server{Addr: freeAddr(t), Handler: http.NewServeMux()}
	sup := New(httpServer, h, sessions, nil)
	sup.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if h.CallCount("Start") != 1 {
		t.Fatalf("expected Start to be called once, got %d", h.CallCount("Start"))
	}
	if h.CallCount("Stop") != 1 {
		t.Fatalf("expected Stop to be called once, got %d", h.CallCount("Stop"))
	}
}

func TestShutdownJoinsErrorsButRunsEveryStep(t *testing.T) {
	h := &mock.Host{StopErr: context.DeadlineExceeded}
	sessions := session.NewManager(time.Hour)
	sessions.Create()

	httpServer := &http.Server{Addr: freeAddr(t), Handler: http.NewServeMux()}
	sup := New(httpServer, h, sessions, nil)

	err := sup.Shutdown(context.Background())
	if err == nil {
		t.Fatal("expected Shutdown to surface the Host.Stop error")
	}
	if h.CallCount("Stop") != 1 {
		t.Fatalf("expected Stop to be attempted, got %d calls", h.CallCount("Stop"))
	}
	if sessions.Count() != 0 {
		t.Fatalf("expected sessions to still be cleaned up despite host error, got count=%d", sessions.Count())
	}
}
