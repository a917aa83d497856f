package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	coreapp "pycheck/internal/core/app"
	"pycheck/internal/shared/observability"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	root       string
	report     *coreapp.Report
	lastUpdate time.Time
}

type reportMsg struct {
	report *coreapp.Report
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case reportMsg:
		m.report = msg.report
		m.lastUpdate = time.Now()

		items := make([]list.Item, 0, len(msg.report.Diagnostics))
		for _, diag := range msg.report.Diagnostics {
			path := diag.Location.File
			if rel, err := filepath.Rel(m.root, path); err == nil {
				path = rel
			}
			items = append(items, item{
				title: fmt.Sprintf("%s %s", diag.Rule, diag.Name),
				desc:  fmt.Sprintf("%s:%d:%d  %s", path, diag.Location.Line, diag.Location.Column, diag.Message),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var status, summary string
	if m.report == nil {
		status = statusStyle.Render("scanning...")
		summary = ""
	} else {
		status = statusStyle.Render(fmt.Sprintf("last run %s | %d files | %d modules | %d imports",
			m.lastUpdate.Format("15:04:05"), m.report.Files, m.report.Modules, m.report.Edges))

		errorCount, warningCount := m.report.Counts()
		if errorCount == 0 && warningCount == 0 {
			summary = successStyle.Render("✅ clean")
		} else {
			summary = fmt.Sprintf("⚠️  %s | %s | %d cyclic",
				errorStyle.Render(fmt.Sprintf("%d errors", errorCount)),
				warnStyle.Render(fmt.Sprintf("%d warnings", warningCount)),
				m.report.Cyclic)
		}
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("pycheck watch"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel(root string) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Findings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list: l,
		root: root,
	}
}

func runWatchUI(ctx context.Context, c *cli.Context) error {
	cfg, paths, _, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Logs on stdout would corrupt the alt screen; divert them to a file
	// under the state dir for the duration of the session.
	if logFile := redirectLogsToFile(paths.StateDir, c.Bool("verbose")); logFile != nil {
		defer logFile.Close()
	}

	shutdown, err := observability.InitTracing(ctx, otlpEndpoint(cfg))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer shutdown(context.Background())

	application, err := coreapp.New(cfg, paths)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer application.Close()
	defer startObservability(ctx, cfg, application)()

	p := tea.NewProgram(initialModel(paths.ProjectRoot), tea.WithAltScreen())

	application.SetReportHandler(func(rep *coreapp.Report) {
		recordHistory(cfg, paths, rep)
		p.Send(reportMsg{report: rep})
	})

	go func() {
		if _, err := application.RunScan(ctx); err != nil {
			slog.Error("initial scan failed", "error", err)
		}
		if err := application.StartWatcher(ctx); err != nil {
			slog.Error("starting watcher failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

func redirectLogsToFile(stateDir string, verbose bool) *os.File {
	logPath := filepath.Join(stateDir, "pycheck.log")
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: creating log dir %s: %v\n", stateDir, err)
		return nil
	}
	if fi, err := os.Lstat(logPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		fmt.Fprintf(os.Stderr, "warning: refusing to log to symlink path %s\n", logPath)
		return nil
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening log file %s: %v\n", logPath, err)
		return nil
	}
	setupLogging(f, verbose)
	return f
}
