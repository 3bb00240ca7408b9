package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "environment.yaml")
	spec := "name: pandas-env\ndependencies:\n  - python=3.12\n  - pandas\n"
	require.NoError(t, os.WriteFile(path, []byte(spec), 0o644))

	return path
}

func TestEnvironmentCreate_WaitsForBuild(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/specification", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "analytics", body["namespace"])
		require.Contains(t, body["specification"], "pandas")

		fmt.Fprint(w, `{"status": "ok", "data": {"build_id": 42}}`)
	})
	mux.HandleFunc("GET /api/v1/build/42/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "data": {"id": 42, "status": "COMPLETED"}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "environment", "create", "-n", "analytics", "-f", writeSpecFile(t))
	require.NoError(t, err)

	assert.Contains(t, output, "build 42")
	assert.Contains(t, output, "environment analytics/pandas-env built")
}

func TestEnvironmentCreate_FailedBuildIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/specification", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "data": {"build_id": 13}}`)
	})
	mux.HandleFunc("GET /api/v1/build/13/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "data": {"id": 13, "status": "FAILED"}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	_, err := executeCommand(t, "environment", "create", "-n", "analytics", "-f", writeSpecFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build 13 ended FAILED")
}

func TestEnvironmentCreate_NoWaitSkipsPolling(t *testing.T) {
	var buildPolled bool

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/specification", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "data": {"build_id": 7}}`)
	})
	mux.HandleFunc("GET /api/v1/build/", func(w http.ResponseWriter, r *http.Request) {
		buildPolled = true
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "environment", "create", "-n", "analytics", "-f", writeSpecFile(t), "--no-wait")
	require.NoError(t, err)

	assert.Contains(t, output, "build 7")
	assert.False(t, buildPolled)

	// Reset for later create tests; cobra keeps flag values between runs.
	envNoWaitFlag = false
}

func TestEnvironmentCreate_RejectsBadSpecBeforeSubmitting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid specification")
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	path := filepath.Join(t.TempDir(), "environment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0o644))

	_, err := executeCommand(t, "environment", "create", "-n", "analytics", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dependencies")
}

func TestEnvironmentList_MultipleNamespaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		namespace := r.URL.Query().Get("namespace")

		fmt.Fprintf(w, `{"status": "ok", "data": [
			{"id": 1, "name": "env-%s", "namespace": {"name": "%s"}, "current_build_id": 5}
		], "page": 1, "count": 1}`, namespace, namespace)
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "environment", "list", "analytics", "research")
	require.NoError(t, err)

	assert.Contains(t, output, "env-analytics")
	assert.Contains(t, output, "env-research")
	assert.Contains(t, output, "Total 2")
}

func TestEnvironmentDelete(t *testing.T) {
	var deletedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletedPath = r.URL.Path

		fmt.Fprint(w, `{"status": "ok"}`)
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "environment", "delete", "analytics", "pandas-env")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/environment/analytics/pandas-env", deletedPath)
	assert.Contains(t, output, "environment analytics/pandas-env deleted")
}
