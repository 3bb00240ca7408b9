package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "conda.store/pkg/condastore/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI for interactive terminals. Short listings print and
// return; long ones page through a Bubble Tea program.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayNamespaces shows the namespace listing, paginating when long.
func (t *TUI) DisplayNamespaces(ctx context.Context, namespaces []m.Namespace) error {
	header, rows := namespaceRows(namespaces)

	return t.displayRows(ctx, "Namespaces", header, rows)
}

// DisplayEnvironments shows the environment listing, paginating when long.
func (t *TUI) DisplayEnvironments(ctx context.Context, environments []m.Environment) error {
	header, rows := environmentRows(environments)

	return t.displayRows(ctx, "Environments", header, rows)
}

// DisplayBuilds shows the build listing, paginating when long.
func (t *TUI) DisplayBuilds(ctx context.Context, builds []m.Build) error {
	header, rows := buildRows(builds)

	return t.displayRows(ctx, "Builds", header, rows)
}

// DisplayBuild prints a single build's details.
func (t *TUI) DisplayBuild(ctx context.Context, build m.Build) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(t.output, "%s\n", titleStyle.Render(fmt.Sprintf("Build %d", build.ID)))
	fmt.Fprintf(t.output, "environment: %d\n", build.EnvironmentID)
	fmt.Fprintf(t.output, "status:      %s\n", build.Status)
	fmt.Fprintf(t.output, "scheduled:   %s\n", formatTime(build.ScheduledOn))

	if build.StartedOn != nil {
		fmt.Fprintf(t.output, "duration:    %s\n", build.Duration().Round(time.Second))
	}

	if build.SizeBytes > 0 {
		fmt.Fprintf(t.output, "size:        %s\n", formatSize(build.SizeBytes))
	}

	return nil
}

// DisplayMessage prints a progress or status line.
func (t *TUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(t.output, format+"\n", args...)
}

func (t *TUI) displayRows(ctx context.Context, title string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newListModel(title, header, rows)

	// Get initial terminal size
	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	// If list is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// listModel pages a tabular listing through the terminal.
type listModel struct {
	title     string
	header    []string
	rows      [][]string
	paginator paginator.Model
	width     int
	height    int
}

// tableChrome is the lines a rendered page spends on title, header
// separators and the paginator footer.
const tableChrome = 6

func newListModel(title string, header []string, rows [][]string) listModel {
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = 20
	p.SetTotalPages(len(rows))

	return listModel{
		title:     title,
		header:    header,
		rows:      rows,
		paginator: p,
		height:    24,
		width:     80,
	}
}

func (lm listModel) needsPagination() bool {
	return len(lm.rows)+tableChrome > lm.height
}

// Init implements tea.Model.
func (lm listModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (lm listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return lm, tea.Quit
		}
	case tea.WindowSizeMsg:
		lm.width = msg.Width
		lm.height = msg.Height
		lm.paginator.PerPage = max(msg.Height-tableChrome, 1)
		lm.paginator.SetTotalPages(len(lm.rows))
	}

	var cmd tea.Cmd
	lm.paginator, cmd = lm.paginator.Update(msg)

	return lm, cmd
}

// View implements tea.Model.
func (lm listModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(lm.title))
	b.WriteString("\n")

	rows := lm.rows
	paginated := lm.needsPagination()

	if paginated {
		start, end := lm.paginator.GetSliceBounds(len(lm.rows))
		rows = lm.rows[start:end]
	}

	b.WriteString(renderTable(lm.header, rows, fmt.Sprintf("Total %d", len(lm.rows))))

	if paginated {
		b.WriteString("\n")
		b.WriteString(lm.paginator.View())
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("←/→ page · q quit"))
		b.WriteString("\n")
	}

	return b.String()
}
