package hashedit

import (
	"os"
	"strings"
)

// bom is the UTF-8 byte-order mark, as the three bytes decode to in a Go string.
const bom = "﻿"

// lineEndingSampleLimit bounds how many line breaks FileIO inspects when
// detecting the file's dominant line ending, so huge files don't require a
// full scan just to pick \n vs \r\n.
const lineEndingSampleLimit = 64

// FileContent is the decoded, BOM-and-ending-stripped view of a file that the
// engine operates on, plus enough metadata to re-encode it losslessly.
type FileContent struct {
	Body   string // LF-normalized body, BOM removed
	BOM    string // "﻿" if the file had one, else ""
	Ending string // "\n" or "\r\n": the file's dominant line ending
}

// ReadFile loads a file from disk and splits it into LF-normalized body, BOM
// prefix, and dominant line ending, per §4.1.
func ReadFile(path string) (FileContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileContent{}, err
	}
	return DecodeContent(string(raw)), nil
}

// DecodeContent splits raw file text into BOM, dominant ending, and
// LF-normalized body. Exposed separately from ReadFile so callers that
// already have the bytes (e.g. from an MCP transport) don't need a real file.
func DecodeContent(raw string) FileContent {
	b := ""
	if strings.HasPrefix(raw, bom) {
		b = bom
		raw = raw[len(bom):]
	}
	ending := detectEnding(raw)
	body := normalizeToLF(raw)
	return FileContent{Body: body, BOM: b, Ending: ending}
}

// Encode re-joins a LF-normalized body with its original BOM and line ending.
func (f FileContent) Encode(body string) string {
	return f.BOM + restoreEnding(body, f.Ending)
}

// WriteFile re-encodes body with f's BOM/ending and writes it to path.
func (f FileContent) WriteFile(path string, body string) error {
	return os.WriteFile(path, []byte(f.Encode(body)), 0o600)
}

// detectEnding returns the dominant line ending among the first
// lineEndingSampleLimit line breaks in s. Empty input, or input with no line
// breaks, defaults to "\n".
func detectEnding(s string) string {
	if s == "" {
		return "\n"
	}
	var crlf, lf, seen int
	i := 0
	for seen < lineEndingSampleLimit {
		idx := strings.IndexByte(s[i:], '\n')
		if idx == -1 {
			break
		}
		abs := i + idx
		if abs > 0 && s[abs-1] == '\r' {
			crlf++
		} else {
			lf++
		}
		seen++
		i = abs + 1
	}
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

func normalizeToLF(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func restoreEnding(body, ending string) string {
	if ending == "\r\n" {
		return strings.ReplaceAll(body, "\n", "\r\n")
	}
	return body
}
