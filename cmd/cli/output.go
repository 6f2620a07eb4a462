package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sevigo/code-council/internal/core"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

// stepTimer tracks timing for verbose output
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Fprintf(os.Stderr, "\n🔧 Step %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Fprintf(os.Stderr, "%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Fprintf(os.Stderr, "   ✓ Done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Fprintf(os.Stderr, "   └── %s\n", d)
		}
	}
}

func (t *stepTimer) info(format string, args ...any) {
	if t.verbose {
		dimColor.Fprintf(os.Stderr, "   ├── "+format+"\n", args...)
	}
}

func truncateSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// emitReport prints the report as JSON or as colored text.
func emitReport(report *core.Report) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report)
	return nil
}

func printReport(report *core.Report) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("💎 CODE COUNCIL REVIEW")
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Println(report.SummaryText)

	if report.Summary.Total > 0 {
		fmt.Print("\nRisk: ")
		printRiskBadge(report.Summary.Risk)
		fmt.Println()
		for _, c := range report.Summary.TopConcerns {
			dimColor.Printf("   ! %s:%d %s\n", c.File, c.Line, c.Preview)
		}
	}

	if len(report.Annotations) == 0 {
		fmt.Println()
		successColor.Println("✅ No issues found!")
	} else {
		fmt.Println()
		warnColor.Println(thinSeparator)
		warnColor.Printf("💡 ANNOTATIONS (%d)\n", len(report.Annotations))
		warnColor.Println(thinSeparator)
	}

	for i, a := range report.Annotations {
		fmt.Println()
		printSeverityBadge(a.Severity)
		boldColor.Printf(" %s", a.File)
		if a.LineEnd > a.LineStart {
			dimColor.Printf(":%d-%d\n", a.LineStart, a.LineEnd)
		} else {
			dimColor.Printf(":%d\n", a.LineStart)
		}
		dimColor.Printf("   Category: %s · Agents: %s\n", a.Category, strings.Join(a.Agents(), ", "))
		fmt.Println()
		infoColor.Println(a.Message)
		if a.Suggestion != "" {
			successColor.Printf("\nSuggestion: %s\n", a.Suggestion)
		}
		if i < len(report.Annotations)-1 {
			fmt.Println()
			dimColor.Println(strings.Repeat("─", 40))
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Println()
		warnColor.Println(thinSeparator)
		warnColor.Printf("⚠ NOTES (%d)\n", len(report.Warnings))
		for _, w := range report.Warnings {
			dimColor.Printf("   [%s] %s\n", w.Kind, w.Message)
		}
	}
	fmt.Println()
}

func printSeverityBadge(severity core.Severity) {
	label := strings.ToUpper(string(severity))
	switch severity {
	case core.SeverityError:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", label)
	case core.SeverityWarning:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", label)
	case core.SeverityInfo:
		color.New(color.BgBlue, color.FgWhite).Printf(" %s ", label)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", label)
	}
}

func printRiskBadge(risk core.RiskLevel) {
	switch risk {
	case core.RiskHigh:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", risk)
	case core.RiskMedium:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", risk)
	default:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", risk)
	}
}
