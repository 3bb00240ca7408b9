package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "conda.store/pkg/condastore/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayNamespaces prints the namespace listing as a table.
func (s *SimpleUI) DisplayNamespaces(ctx context.Context, namespaces []m.Namespace) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header, rows := namespaceRows(namespaces)
	s.printf("\n%s", renderTable(header, rows, fmt.Sprintf("Total %d", len(rows))))

	return nil
}

// DisplayEnvironments prints the environment listing as a table.
func (s *SimpleUI) DisplayEnvironments(ctx context.Context, environments []m.Environment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header, rows := environmentRows(environments)
	s.printf("\n%s", renderTable(header, rows, fmt.Sprintf("Total %d", len(rows))))

	return nil
}

// DisplayBuilds prints the build listing as a table.
func (s *SimpleUI) DisplayBuilds(ctx context.Context, builds []m.Build) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header, rows := buildRows(builds)
	s.printf("\n%s", renderTable(header, rows, fmt.Sprintf("Total %d", len(rows))))

	return nil
}

// DisplayBuild prints a single build's details.
func (s *SimpleUI) DisplayBuild(ctx context.Context, build m.Build) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("build:       %d\n", build.ID)
	s.printf("environment: %d\n", build.EnvironmentID)
	s.printf("status:      %s\n", build.Status)
	s.printf("scheduled:   %s\n", formatTime(build.ScheduledOn))

	if build.StartedOn != nil {
		s.printf("duration:    %s\n", build.Duration().Round(time.Second))
	}

	if build.SizeBytes > 0 {
		s.printf("size:        %s\n", formatSize(build.SizeBytes))
	}

	return nil
}

// DisplayMessage prints a progress or status line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf(format+"\n", args...)
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

func namespaceRows(namespaces []m.Namespace) ([]string, [][]string) {
	sorted := make([]m.Namespace, len(namespaces))
	copy(sorted, namespaces)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	rows := make([][]string, 0, len(sorted))
	for _, namespace := range sorted {
		rows = append(rows, []string{strconv.Itoa(namespace.ID), namespace.Name})
	}

	return []string{"ID", "Name"}, rows
}

func environmentRows(environments []m.Environment) ([]string, [][]string) {
	sorted := make([]m.Environment, len(environments))
	copy(sorted, environments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Namespace.Name != sorted[j].Namespace.Name {
			return sorted[i].Namespace.Name < sorted[j].Namespace.Name
		}

		return sorted[i].Name < sorted[j].Name
	})

	rows := make([][]string, 0, len(sorted))
	for _, environment := range sorted {
		rows = append(rows, []string{
			environment.Namespace.Name,
			environment.Name,
			strconv.Itoa(environment.CurrentBuildID),
		})
	}

	return []string{"Namespace", "Name", "Build"}, rows
}

func buildRows(builds []m.Build) ([]string, [][]string) {
	sorted := make([]m.Build, len(builds))
	copy(sorted, builds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	rows := make([][]string, 0, len(sorted))
	for _, build := range sorted {
		duration := ""
		if build.StartedOn != nil {
			duration = build.Duration().Round(time.Second).String()
		}

		rows = append(rows, []string{
			strconv.Itoa(build.ID),
			string(build.Status),
			formatTime(build.ScheduledOn),
			duration,
		})
	}

	return []string{"ID", "Status", "Scheduled", "Duration"}, rows
}

func renderTable(header []string, rows [][]string, footer string) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, row := range rows {
		table.Append(row)
	}

	if footer != "" {
		footerRow := make([]string, len(header))
		footerRow[0] = footer
		table.SetFooter(footerRow)
	}

	table.Render()

	return tableBuffer.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04:05")
}

func formatSize(bytes int64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMG"[exp])
}
