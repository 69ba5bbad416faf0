package status

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typings-worker/internal/config"
	"typings-worker/internal/installer"
	"typings-worker/internal/ipc"
	"typings-worker/internal/logging"
)

// newBootstrappedProcess prépare un processus avec un faux npm et un
// registre pré-installé
func newBootstrappedProcess(t *testing.T) *installer.Process {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "status-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	stub := filepath.Join(tempDir, "npm")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0755))

	cacheDir := filepath.Join(tempDir, "cache")
	indexDir := filepath.Join(cacheDir, "node_modules", "types-registry")
	require.NoError(t, os.MkdirAll(indexDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(indexDir, "index.json"),
		[]byte(`{"entries":{"lodash":null,"react":null}}`), 0644))

	cfg := &config.Config{
		GlobalCacheDir:       cacheDir,
		TypesRegistryPackage: "types-registry",
		SafeListPath:         filepath.Join(tempDir, "safeList.json"),
		TypesMapPath:         filepath.Join(tempDir, "typesMap.json"),
		NpmLocation:          stub,
		ThrottleLimit:        5,
		Version:              "dev",
	}

	channel := ipc.NewChannel(strings.NewReader(""), &bytes.Buffer{}, logging.NewLog(""))
	proc := installer.NewProcess(cfg, logging.NewLog(""), channel, nil)
	proc.Bootstrap()
	return proc
}

func performRequest(t *testing.T, proc *installer.Process, path string) map[string]any {
	t.Helper()
	router := SetupRouter(proc)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	body := performRequest(t, newBootstrappedProcess(t), "/health")

	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "typings-worker", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRegistryEndpoint(t *testing.T) {
	body := performRequest(t, newBootstrappedProcess(t), "/api/v1/registry")

	assert.Equal(t, float64(2), body["count"])
	assert.ElementsMatch(t, []any{"lodash", "react"}, body["names"])
}

func TestStatsEndpoint(t *testing.T) {
	body := performRequest(t, newBootstrappedProcess(t), "/api/v1/stats")

	installs, ok := body["installs"].(map[string]any)
	require.True(t, ok)
	// La mise à jour du paquet registre ne passe pas par les compteurs
	assert.Equal(t, float64(0), installs["total"])
	assert.NotEmpty(t, body["timestamp"])
}
