package main

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/materialcalc/internal/calculator"
	"github.com/coachpo/materialcalc/internal/infra/config"
)

func TestResolveConfigPath(t *testing.T) {
	require.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))

	dir := t.TempDir()
	t.Chdir(dir)
	require.Equal(t, "", resolveConfigPath(""))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "app.yaml"), []byte("environment: dev\n"), 0o600))
	require.Equal(t, filepath.Clean(defaultConfigPath), resolveConfigPath(""))
}

func TestBuildAPIServerServesHealth(t *testing.T) {
	appCfg := config.DefaultAppConfig()
	appCfg.APIServer.ReadHeaderTimeout = 0
	server := buildAPIServer(appCfg, calculator.New(calculator.DefaultSettings()), nil)
	require.Equal(t, defaultReadHeaderTimeout, server.ReadHeaderTimeout)
	require.Equal(t, appCfg.APIServer.Addr, server.Addr)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServiceStartStop(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	svc, err := newService(context.Background(), logger, "")
	require.NoError(t, err)
	svc.server.Addr = "127.0.0.1:0"
	svc.start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc.stop(ctx)

	out := buf.String()
	require.Contains(t, out, "no configuration file, using defaults")
	require.Contains(t, out, "shutdown: stopping api server completed")
	require.Contains(t, out, "shutdown: waiting for server goroutines completed")
	require.Contains(t, out, "shutdown: flushing telemetry completed")
}
