package hashedit

import (
	"fmt"
	"strings"
)

// FormatHashLines renders each line of content as "N:HH| CONTENT", starting
// the line count at startLine (1 if startLine <= 0). A trailing '\r' is
// dropped from each line, so stripping the "N:HH| " prefix back off every
// rendered line reconstructs LF-normalized content exactly.
func FormatHashLines(content string, startLine int) string {
	if startLine <= 0 {
		startLine = 1
	}

	rawLines := strings.Split(content, "\n")
	out := make([]string, len(rawLines))
	for i, raw := range rawLines {
		n := startLine + i
		line := strings.TrimSuffix(raw, "\r")
		out[i] = fmt.Sprintf("%d:%s| %s", n, LineHash(n, line), line)
	}
	return strings.Join(out, "\n")
}
