package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/build/42/", r.URL.Path)

		fmt.Fprint(w, `{"status": "ok", "data": {
			"id": 42, "environment_id": 7, "status": "BUILDING",
			"scheduled_on": "2026-03-01T12:00:00Z"
		}}`)
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "build", "status", "42")
	require.NoError(t, err)

	assert.Contains(t, output, "42")
	assert.Contains(t, output, "BUILDING")
}

func TestBuildStatus_RejectsBadID(t *testing.T) {
	_, err := executeCommand(t, "build", "status", "not-a-number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid build id")
}

func TestBuildWait_FailsOnFailedBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "data": {"id": 9, "status": "CANCELED"}}`)
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	_, err := executeCommand(t, "build", "wait", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build 9 ended CANCELED")
}

func TestBuildCancel(t *testing.T) {
	var canceled bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/build/9/cancel", r.URL.Path)
		canceled = true

		fmt.Fprint(w, `{"status": "ok"}`)
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "build", "cancel", "9")
	require.NoError(t, err)

	assert.True(t, canceled)
	assert.Contains(t, output, "build 9 canceled")
}

func TestBuildLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/build/3/logs", r.URL.Path)

		fmt.Fprint(w, "collecting packages...\ndone\n")
	}))
	t.Cleanup(server.Close)
	pointClientAt(t, server)

	output, err := executeCommand(t, "build", "logs", "3")
	require.NoError(t, err)

	assert.Contains(t, output, "collecting packages...")
	assert.Contains(t, output, "done")
}
