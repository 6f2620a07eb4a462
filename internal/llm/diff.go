package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// FormatUnitDiff renders the files of a work unit for a prompt. Lines that
// exist on the new side are prefixed with their line number so the model can
// cite them ("L  12 +code"); removed lines get a blank prefix of the same width.
func FormatUnitDiff(unit core.WorkUnit) string {
	var sb strings.Builder
	for i, f := range unit.Files {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "--- FILE: %s ---\n", f.Path)
		sb.WriteString(numberPatch(f.Patch))
	}
	return sb.String()
}

func numberPatch(patch string) string {
	var sb strings.Builder
	line := -1
	for _, l := range strings.Split(patch, "\n") {
		if strings.HasPrefix(l, "@@") {
			line = hunkStart(l)
			sb.WriteString(l + "\n")
			continue
		}
		switch {
		case line < 0:
			sb.WriteString(l + "\n")
		case strings.HasPrefix(l, "+"), strings.HasPrefix(l, " "):
			fmt.Fprintf(&sb, "L%4d %s\n", line, l)
			line++
		case strings.HasPrefix(l, "-"):
			fmt.Fprintf(&sb, "      %s\n", l)
		case l == "":
			continue
		default:
			sb.WriteString(l + "\n")
		}
	}
	return sb.String()
}

// hunkStart returns the new-side start line of a hunk header, or -1.
func hunkStart(header string) int {
	plus := strings.Index(header, "+")
	if plus < 0 {
		return -1
	}
	rest := header[plus+1:]
	end := strings.IndexAny(rest, ", @")
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return n
}
