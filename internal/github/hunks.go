package github

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MaxSnapDistance is how far an annotation may be moved to land on a commentable line.
const MaxSnapDistance = 5

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParseValidLinesFromPatch extracts all line numbers that can receive a comment in a GitHub PR.
// These are the lines present in the "new" side of the diff (the + side).
func ParseValidLinesFromPatch(patch string, logger *slog.Logger) map[int]struct{} {
	validLines := make(map[int]struct{})
	currentLine := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			matches := hunkHeaderRegex.FindStringSubmatch(line)
			currentLine = -1
			if len(matches) < 2 {
				if logger != nil {
					logger.Warn("skipped malformed hunk header", "line", line)
				}
				continue
			}
			start, err := strconv.Atoi(matches[1])
			if err != nil {
				if logger != nil {
					logger.Warn("skipped malformed hunk header", "line", line, "error", err)
				}
				continue
			}
			currentLine = start
			continue
		}

		if currentLine == -1 {
			continue
		}

		// '+' and ' ' exist on the new side; '-' and "\ No newline" do not.
		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			validLines[currentLine] = struct{}{}
			currentLine++
		}
	}

	return validLines
}

// LineMap maps file paths to their commentable lines.
type LineMap map[string]map[int]struct{}

// BuildLineMap parses the patches of a change set. Files without a patch are omitted.
func BuildLineMap(files map[string]string, logger *slog.Logger) LineMap {
	m := make(LineMap, len(files))
	for path, patch := range files {
		if patch == "" {
			continue
		}
		m[path] = ParseValidLinesFromPatch(patch, logger)
	}
	return m
}

// Snap returns line if it is commentable, otherwise the closest commentable
// line within maxDistance. Ties go to the lower line. ok is false when no
// line is close enough.
func (m LineMap) Snap(path string, line, maxDistance int) (snapped int, ok bool) {
	valid := m[path]
	if len(valid) == 0 {
		return 0, false
	}
	if _, exact := valid[line]; exact {
		return line, true
	}

	sorted := make([]int, 0, len(valid))
	for l := range valid {
		sorted = append(sorted, l)
	}
	sort.Ints(sorted)

	best, bestDistance := 0, maxDistance+1
	for _, l := range sorted {
		d := l - line
		if d < 0 {
			d = -d
		}
		if d < bestDistance {
			best, bestDistance = l, d
		}
	}
	return best, bestDistance <= maxDistance
}
