package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/farkle-backend/internal/events"
	"github.com/xtding233/farkle-backend/internal/storage/memory"
)

func TestServeHTTPAndHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv, err := New("127.0.0.1:0", "127.0.0.1:0", mux)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.HTTPAddr() + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("body = %q", body)
	}

	conn, err := grpc.NewClient(srv.GRPCAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	res, err := grpc_health_v1.NewHealthClient(conn).Check(checkCtx, &grpc_health_v1.HealthCheckRequest{Service: HealthService})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if res.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v", res.GetStatus())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHealthDisabled(t *testing.T) {
	srv, err := New("127.0.0.1:0", "", http.NotFoundHandler())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if srv.GRPCAddr() != "" {
		t.Fatalf("grpc addr = %q, want empty", srv.GRPCAddr())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Serve(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore("")
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("empty path should give a memory store, got %T", store)
	}

	path := filepath.Join(t.TempDir(), "nested", "farkle.db")
	store, err = openStore(path)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer store.Close()
	if _, err := store.GetGame(context.Background()); err != nil {
		t.Fatalf("get game: %v", err)
	}
}

func TestOpenPublisher(t *testing.T) {
	pub, err := openPublisher("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := pub.(events.Nop); !ok {
		t.Fatalf("empty url should give Nop, got %T", pub)
	}
	if _, err := openPublisher("nats://127.0.0.1:1"); err == nil {
		t.Fatal("expected connect error")
	}
}
