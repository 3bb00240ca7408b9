package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "conda.store/pkg/condastore/internal/model"
)

func TestWaitForBuild_ReturnsOnTerminalStatus(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := m.BuildQueued
		switch calls.Add(1) {
		case 2:
			status = m.BuildBuilding
		case 3:
			status = m.BuildCompleted
		}

		writeEnvelope(t, w, envelope{
			Status: "ok",
			Data:   mustRaw(t, m.Build{ID: 9, Status: status}),
		})
	}))

	build, err := client.WaitForBuild(t.Context(), 9, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, m.BuildCompleted, build.Status)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWaitForBuild_Timeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, envelope{
			Status: "ok",
			Data:   mustRaw(t, m.Build{ID: 9, Status: m.BuildBuilding}),
		})
	}))

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	build, err := client.WaitForBuild(ctx, 9, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "waiting for build 9")
	assert.Equal(t, m.BuildBuilding, build.Status)
}

func TestWaitForBuild_FailedIsStillReturned(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, envelope{
			Status: "ok",
			Data:   mustRaw(t, m.Build{ID: 3, Status: m.BuildFailed}),
		})
	}))

	build, err := client.WaitForBuild(t.Context(), 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, m.BuildFailed, build.Status)
}

func TestWaitForNamespace_SettlesOnError(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "pending"
		if calls.Add(1) >= 2 {
			status = "error"
		}

		writeEnvelope(t, w, envelope{Status: status})
	}))

	status, err := client.WaitForNamespace(t.Context(), "broken", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, m.NamespaceError, status)
}

func TestWaitForNamespace_Timeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, envelope{Status: "pending"})
	}))

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	_, err := client.WaitForNamespace(ctx, "slow", 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), `namespace "slow"`)
}
