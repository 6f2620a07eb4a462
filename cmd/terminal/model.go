package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

const helpText = `AVAILABLE COMMANDS:

  /open [path]            Open a report JSON file.
  /pr [owner/repo#n]      Open the latest stored review of a pull request.
  /severity [level]       Show annotations at or above error, warning or info.
  /category [name]        Show only one category.
  /clear                  Remove all filters.
  /help                   Show this help message.
  /exit, /quit            Exit.`

type model struct {
	styles styles
	cfg    *config.Config
	logger *slog.Logger

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool
	width     int

	// Session State
	source  string
	report  *core.Report
	filter  reportFilter
	notice  string
	initial string
}

func initialModel(theme ThemeName, cfg *config.Config, logger *slog.Logger, initial string) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter a command, /help for a list..."
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:   styles,
		cfg:      cfg,
		logger:   logger,
		textarea: ta,
		spinner:  sp,
		width:    80,
		initial:  initial,
	}
}

func (m *model) Init() tea.Cmd {
	if m.initial != "" {
		return tea.Batch(m.spinner.Tick, m.processCommand(m.initial))
	}
	m.refresh()
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m, m.processCommand(input)
		}

	case reportLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.logger.Error("failed to load report", "error", msg.err)
			m.notice = m.styles.error.Render("⚠ " + msg.err.Error())
		} else {
			m.report = msg.report
			m.source = msg.source
			m.filter = reportFilter{}
			m.notice = m.styles.success.Render("✓ Loaded " + msg.source)
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width - 4
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width - 10)
		m.refresh()
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// refresh re-renders the viewport content from the current state.
func (m *model) refresh() {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(m.notice + "\n\n")
	}
	if m.report == nil {
		b.WriteString(m.styles.inactive.Render("No report loaded. Use /open or /pr.") + "\n\n")
		b.WriteString(helpText)
		m.viewport.SetContent(b.String())
		return
	}

	rendered, err := renderReport(m.filter.apply(m.report), m.width)
	if err != nil {
		b.WriteString(m.styles.error.Render("⚠ " + err.Error()))
	} else {
		b.WriteString(rendered)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m *model) View() string {
	var statusParts []string
	if m.report != nil {
		statusParts = append(statusParts,
			"REPORT: "+m.source,
			m.styles.risk[m.report.Summary.Risk].Render("RISK "+string(m.report.Summary.Risk)),
			fmt.Sprintf("%d annotations", len(m.report.Annotations)),
			"FILTER: "+m.filter.String(),
		)
		if n := len(m.report.Warnings); n > 0 {
			statusParts = append(statusParts, m.styles.warning.Render(fmt.Sprintf("%d notes", n)))
		}
	} else {
		statusParts = append(statusParts, "REPORT: None")
	}
	if m.cfg != nil {
		statusParts = append(statusParts, fmt.Sprintf("🤖 %s (%s)", m.cfg.AI.Model, m.cfg.AI.Provider))
	}
	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("LOADING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.header.Render("💎 CODE COUNCIL"),
			m.styles.viewport.Render(m.viewport.View()),
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) processCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	usage := func(text string) tea.Cmd {
		m.notice = m.styles.error.Render("USAGE: " + text)
		m.refresh()
		return nil
	}

	switch command {
	case "/open":
		if len(args) != 1 {
			return usage("/open [path]")
		}
		m.isLoading = true
		m.notice = m.styles.command.Render("→ Opening " + args[0])
		return tea.Batch(m.spinner.Tick, loadReportFileCmd(args[0]))

	case "/pr":
		if len(args) != 1 {
			return usage("/pr [owner/repo#number]")
		}
		m.isLoading = true
		m.notice = m.styles.command.Render("→ Loading stored review for " + args[0])
		return tea.Batch(m.spinner.Tick, loadStoredReviewCmd(m.cfg, m.logger, args[0]))

	case "/severity":
		if len(args) != 1 {
			return usage("/severity [error|warning|info]")
		}
		sev, ok := core.ParseSeverity(args[0])
		if !ok {
			return usage("/severity [error|warning|info]")
		}
		m.filter.severity = sev
		m.notice = m.styles.command.Render("→ Filter: " + m.filter.String())

	case "/category":
		if len(args) != 1 {
			return usage("/category [name]")
		}
		m.filter.category = strings.ToLower(args[0])
		m.notice = m.styles.command.Render("→ Filter: " + m.filter.String())

	case "/clear":
		m.filter = reportFilter{}
		m.notice = ""

	case "/help", "/h":
		m.notice = helpText

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.notice = m.styles.error.Render(fmt.Sprintf("UNKNOWN COMMAND: %s", command)) + "\n" +
			m.styles.inactive.Render("Type /help for assistance.")
	}
	m.refresh()
	return nil
}
