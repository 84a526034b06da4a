package hashedit

import (
	"fmt"
	"sort"
	"strings"
)

// mismatchContext is how many lines of surrounding context accompany each
// stale reference in a rendered report (§4.8).
const mismatchContext = 2

// FormatMismatchReport renders a grep-style diagnostic for a set of stale
// line references: each mismatch gets its surrounding context, overlapping
// windows are merged, and every context line is shown with its current
// canonical hash so the caller can re-issue the edit immediately.
func FormatMismatchReport(mismatches []HashMismatch, lines []string) string {
	if len(mismatches) == 0 {
		return ""
	}

	stale := make(map[int]bool, len(mismatches))
	for _, m := range mismatches {
		stale[m.Line] = true
	}

	type window struct{ start, end int }
	windows := make([]window, 0, len(mismatches))
	for _, m := range mismatches {
		start := m.Line - mismatchContext
		if start < 1 {
			start = 1
		}
		end := m.Line + mismatchContext
		if end > len(lines) {
			end = len(lines)
		}
		windows = append(windows, window{start, end})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })

	merged := windows[:0:0]
	for _, w := range windows {
		if n := len(merged); n > 0 && w.start <= merged[n-1].end+1 {
			if w.end > merged[n-1].end {
				merged[n-1].end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}

	var b strings.Builder
	plural := "s"
	if len(mismatches) == 1 {
		plural = ""
	}
	fmt.Fprintf(&b, "%d line%s changed since you read this file — use the updated references below.\n\n", len(mismatches), plural)

	for wi, w := range merged {
		if wi > 0 {
			b.WriteString("...\n")
		}
		for ln := w.start; ln <= w.end; ln++ {
			content := lines[ln-1]
			marker := "   "
			if stale[ln] {
				marker = ">>>"
			}
			fmt.Fprintf(&b, "%s %d:%s| %s\n", marker, ln, LineHash(ln, content), content)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
