// Package controller renders client output for terminal users.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "conda.store/pkg/condastore/internal/model"
)

// UI defines the interface for displaying server resources.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayNamespaces(ctx context.Context, namespaces []m.Namespace) error
	DisplayEnvironments(ctx context.Context, environments []m.Environment) error
	DisplayBuilds(ctx context.Context, builds []m.Build) error
	DisplayBuild(ctx context.Context, build m.Build) error
	DisplayMessage(ctx context.Context, format string, args ...any)
}

// NewUI picks the UI implementation: an interactive pager on a terminal,
// plain table output everywhere else (pipes, CI, tests).
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the file is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
