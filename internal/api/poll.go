package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	m "conda.store/pkg/condastore/internal/model"
)

// WaitForBuild polls a build until it reaches a terminal status. The context
// deadline bounds the wait; on timeout the last observed build is returned
// alongside the error.
func (c *Client) WaitForBuild(ctx context.Context, id int, interval time.Duration) (m.Build, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last m.Build

	for {
		build, err := c.GetBuild(ctx, id)
		if err != nil {
			return last, err
		}

		last = build
		if build.Status.IsTerminal() {
			return build, nil
		}

		slog.Debug("build in progress", "build", id, "status", build.Status)

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("waiting for build %d (last status %s): %w", id, build.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}

// WaitForNamespace polls a namespace until provisioning settles, returning
// the final status. A status of error is not an error here; callers decide
// what a failed provisioning means for them.
func (c *Client) WaitForNamespace(ctx context.Context, name string, interval time.Duration) (m.NamespaceStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetNamespaceStatus(ctx, name)
		if err != nil {
			return "", err
		}

		if status.Settled() {
			return status, nil
		}

		slog.Debug("namespace provisioning", "namespace", name, "status", status)

		select {
		case <-ctx.Done():
			return status, fmt.Errorf("waiting for namespace %q: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}
