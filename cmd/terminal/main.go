package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/logger"
)

func main() {
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, dracula)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	reportFlag := flag.String("report", "", "Open a report JSON file on start")
	prFlag := flag.String("pr", "", "Open the latest stored review of owner/repo#number on start")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal; logs go to a file.
	cfg.Logging.Output = "file"
	if cfg.Logging.File == "" {
		cfg.Logging.File = "council-terminal.log"
	}
	writer, closeLog := logger.Writer(cfg.Logging)
	defer closeLog()
	log := logger.NewLogger(cfg.Logging, writer)

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = os.Getenv("CODE_COUNCIL_THEME")
	}
	if selectedTheme == "" {
		selectedTheme = string(ThemeCyan)
	}
	theme := ThemeName(selectedTheme)
	if !slices.Contains(ListThemes(), theme) {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	var initial string
	switch {
	case flag.NArg() > 0:
		initial = "/open " + flag.Arg(0)
	case *reportFlag != "":
		initial = "/open " + *reportFlag
	case *prFlag != "":
		initial = "/pr " + *prFlag
	}

	p := tea.NewProgram(initialModel(theme, cfg, log, initial), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("error running program", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
