package main

import "github.com/sevigo/code-council/internal/core"

// Indicates that a report was read from a file or the review store.
type reportLoadedMsg struct {
	source string
	report *core.Report
	err    error
}
