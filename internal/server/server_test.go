package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/format"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	logger := discardLogger()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewServer(Deps{
		Dashboard: services.NewDashboard(logger, metrics, 1),
		Sessions: session.NewStore(config.SessionConfig{
			TTL: time.Minute, MaxSessions: 4, CookieName: "sid",
		}, nil, metrics, logger),
		Metrics:        metrics,
		Format:         format.New("en"),
		Logger:         logger,
		MaxUploadBytes: 1 << 20,
	})
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/admin/stats", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/dashboard", http.StatusNotFound},
		{http.MethodGet, "/api/branches", http.StatusNotFound},
		{http.MethodGet, "/api/products/Widget/trend", http.StatusNotFound},
		{http.MethodGet, "/unknown", http.StatusNotFound},
		{http.MethodPut, "/api/datasets", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestServer_MetricsExposeSessions(t *testing.T) {
	s := newTestServer()

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "dashboard_active_sessions 1")
}

func TestGracefulServer_ShutdownRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.ServerConfig{ShutdownTimeout: 5 * time.Second}
	gs := NewGracefulServer(&http.Server{Handler: newTestServer()}, discardLogger(), cfg)

	var ran atomic.Bool
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, ran.Load())
}

func TestGracefulServer_HookErrorIsReturned(t *testing.T) {
	gs := NewGracefulServer(&http.Server{}, discardLogger(), config.ServerConfig{ShutdownTimeout: time.Second})
	boom := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return boom })

	err := gs.shutdown(context.Background())

	assert.ErrorIs(t, err, boom)
}
