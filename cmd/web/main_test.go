package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

const seedCSV = `Año,Mes,Producto,Unidades_vendidas,Ingreso_total,Costo_total,Sucursal
2023,1,Widget,10,100,80,Centro
2023,2,Widget,20,220,160,Centro
2024,1,Widget,30,360,200,Norte
`

func testConfig(t *testing.T, seed string) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Dataset.SeedFile = seed
	cfg.Security.EnableRateLimit = false
	return cfg
}

func testHandler(t *testing.T, seed string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := newHandler(testConfig(t, seed), logger, prometheus.NewRegistry())
	require.NoError(t, err)
	return h
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ventas.csv")
	require.NoError(t, os.WriteFile(path, []byte(seedCSV), 0o644))
	return path
}

func TestHandler_SeededDashboard(t *testing.T) {
	h := testHandler(t, writeSeed(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Branches    []string `json:"branches"`
			RecordCount int      `json:"record_count"`
			Reports     []struct {
				Product string `json:"product"`
				Summary struct {
					TotalUnits        float64  `json:"total_units"`
					PriceYoYChangePct *float64 `json:"price_yoy_change_pct"`
				} `json:"summary"`
				Trend struct {
					Kind string `json:"kind"`
				} `json:"trend"`
			} `json:"reports"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Centro", "Norte"}, resp.Data.Branches)
	assert.Equal(t, 3, resp.Data.RecordCount)
	require.Len(t, resp.Data.Reports, 1)

	widget := resp.Data.Reports[0]
	assert.Equal(t, 60.0, widget.Summary.TotalUnits)
	require.NotNil(t, widget.Summary.PriceYoYChangePct)
	assert.InDelta(t, 14.2857, *widget.Summary.PriceYoYChangePct, 1e-3)
	assert.Equal(t, "ok", widget.Trend.Kind)
}

func TestHandler_PageRenders(t *testing.T) {
	h := testHandler(t, writeSeed(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Data for")
	assert.Contains(t, w.Body.String(), "Widget")
}

func TestHandler_WithoutSeed(t *testing.T) {
	h := testHandler(t, "")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_BadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Año,Mes\n2023,1\n"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := newHandler(testConfig(t, path), logger, prometheus.NewRegistry())

	assert.ErrorContains(t, err, "missing required columns")
}

func TestHandler_Metrics(t *testing.T) {
	h := testHandler(t, writeSeed(t))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dashboard_trend_results_total{kind="ok"} 1`)
}
