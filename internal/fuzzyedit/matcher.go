// Package fuzzyedit implements the alternative, multi-line-string-addressed
// editing mode: given a block of text a caller believes is present in a
// file, find where it actually is — exactly if possible, by normalized
// similarity otherwise — and report enough about the match (or near-misses)
// for the caller to retry.
package fuzzyedit

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSimilarityThreshold is used when a caller doesn't override it.
const DefaultSimilarityThreshold = 0.85

// maxCandidates bounds how many near-miss windows a diagnostic lists.
const maxCandidates = 3

// Options configures a FindEditMatch call.
type Options struct {
	AllowFuzzy          bool
	SimilarityThreshold float64 // 0 means DefaultSimilarityThreshold
}

// Match describes where oldText was found in content.
type Match struct {
	StartIndex int    // byte offset into content
	ActualText string // verbatim text to replace
	WasFuzzy   bool
}

// Candidate is a near-miss window reported for diagnostics.
type Candidate struct {
	Line       int
	Text       string
	Similarity float64
}

// AmbiguousError means oldText (or a sufficiently similar fuzzy window)
// appears more than once; the caller must narrow its target.
type AmbiguousError struct {
	Occurrences int
	Fuzzy       bool
}

func (e *AmbiguousError) Error() string {
	if e.Fuzzy {
		return fmt.Sprintf("fuzzy match is ambiguous: %d candidates scored above threshold", e.Occurrences)
	}
	return fmt.Sprintf("text occurs %d times; add surrounding context to disambiguate", e.Occurrences)
}

// NoMatchError means nothing matched, exactly or fuzzily. Candidates holds
// the closest line-aligned windows found, for the caller's retry.
type NoMatchError struct {
	Target     string
	Candidates []Candidate
}

func (e *NoMatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no match found for %q", truncate(e.Target, 80))
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n  line %d (similarity %.2f): %s", c.Line, c.Similarity, truncate(c.Text, 80))
	}
	return b.String()
}

// FindEditMatch locates oldText within content, per spec §4.7:
//  1. two or more exact occurrences is an ambiguity error;
//  2. exactly one exact occurrence is a unique match;
//  3. otherwise, when fuzzy matching is disallowed, a no-match error carrying
//     the single closest candidate;
//  4. otherwise, a line-window similarity scan: exactly one window at or
//     above the threshold is a fuzzy match, zero or multiple is an error.
func FindEditMatch(content, oldText string, opts Options) (Match, error) {
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	if n := strings.Count(content, oldText); n >= 1 {
		if n >= 2 {
			return Match{}, &AmbiguousError{Occurrences: n}
		}
		idx := strings.Index(content, oldText)
		return Match{StartIndex: idx, ActualText: oldText}, nil
	}

	windows := slidingWindows(content, lineCount(oldText))
	scored := scoreWindows(windows, oldText)

	if !opts.AllowFuzzy {
		return Match{}, &NoMatchError{Target: oldText, Candidates: closestN(scored, 1)}
	}

	var above []scoredWindow
	for _, w := range scored {
		if w.similarity >= threshold {
			above = append(above, w)
		}
	}

	switch len(above) {
	case 0:
		return Match{}, &NoMatchError{Target: oldText, Candidates: closestN(scored, maxCandidates)}
	case 1:
		w := above[0]
		return Match{StartIndex: w.startIndex, ActualText: w.text, WasFuzzy: true}, nil
	default:
		return Match{}, &AmbiguousError{Occurrences: len(above), Fuzzy: true}
	}
}

type scoredWindow struct {
	line       int
	startIndex int
	text       string
	similarity float64
}

// slidingWindows returns every contiguous run of n lines in content, tagged
// with its starting line number (1-indexed) and byte offset.
func slidingWindows(content string, n int) []scoredWindow {
	if n < 1 {
		n = 1
	}
	lines := strings.Split(content, "\n")

	offsets := make([]int, len(lines)+1)
	pos := 0
	for i, l := range lines {
		offsets[i] = pos
		pos += len(l) + 1
	}
	offsets[len(lines)] = pos

	var windows []scoredWindow
	for start := 0; start+n <= len(lines); start++ {
		text := strings.Join(lines[start:start+n], "\n")
		windows = append(windows, scoredWindow{
			line:       start + 1,
			startIndex: offsets[start],
			text:       text,
		})
	}
	return windows
}

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

func scoreWindows(windows []scoredWindow, target string) []scoredWindow {
	normTarget := normalize(target)
	out := make([]scoredWindow, len(windows))
	for i, w := range windows {
		out[i] = w
		out[i].similarity = similarity(normalize(w.text), normTarget)
	}
	return out
}

// similarity is a normalized Levenshtein ratio: 1 - distance/maxLen.
// Two empty strings are defined as identical.
func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func closestN(scored []scoredWindow, n int) []Candidate {
	sorted := append([]scoredWindow(nil), scored...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].similarity > sorted[j].similarity })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]Candidate, len(sorted))
	for i, w := range sorted {
		out[i] = Candidate{Line: w.line, Text: w.text, Similarity: w.similarity}
	}
	return out
}

var (
	whitespaceRunRe = regexp.MustCompile(`[ \t]+`)
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
)

// normalize collapses runs of horizontal whitespace and trims line-end
// whitespace, so formatting-only drift doesn't defeat similarity scoring.
func normalize(s string) string {
	s = trailingSpaceRe.ReplaceAllString(s, "\n")
	s = strings.TrimRight(s, " \t")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
