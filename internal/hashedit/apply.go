package hashedit

import (
	"fmt"
	"sort"
	"strings"
)

// RawEdit is the wire-level shape of one edit: an unparsed src ref/range/
// insert/substring expression and its replacement text.
type RawEdit struct {
	Src string
	Dst string
}

// ApplyResult is the engine's return value for a completed edit batch.
type ApplyResult struct {
	Content          string
	Changed          bool
	FirstChangedLine int // 1-indexed; 0 if Changed is false
}

type resolvedEdit struct {
	edit          Edit
	sortLine      int
	precedence    int
	originalIndex int
}

func precedenceFor(k SpecKind) int {
	switch k {
	case KindSingle, KindRange:
		return 0
	case KindInsertAfter:
		return 1
	case KindInsertBefore:
		return 2
	default: // KindSubstring
		return 3
	}
}

func sortLineFor(spec EditSpec) int {
	switch spec.Kind {
	case KindSingle, KindInsertAfter, KindInsertBefore:
		return spec.Start.Line
	case KindRange:
		return spec.End.Line
	default: // KindSubstring: applied last, in source order
		return 0
	}
}

// ApplyHashlineEdits parses, validates, and applies a batch of hashline
// edits to content (§4.5). Edits are resolved bottom-up by descending line
// number so that earlier splices never invalidate the line numbers later
// splices were computed against; ties at the same line are broken by a
// fixed per-kind precedence and finally by the edit's position in the
// batch. On any parse or validation error the batch is rejected wholesale
// and a zero ApplyResult (empty Content) is returned with the error.
func ApplyHashlineEdits(content string, raw []RawEdit) (ApplyResult, error) {
	if len(raw) == 0 {
		return ApplyResult{Content: content}, nil
	}

	fc := DecodeContent(content)
	lines := strings.Split(fc.Body, "\n")

	edits := make([]Edit, len(raw))
	for i, r := range raw {
		spec, err := ParseSpec(r.Src)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("edit %d (%q): %w", i, r.Src, err)
		}
		edits[i] = Edit{Src: r.Src, Dst: r.Dst, Spec: spec}
	}

	if err := ValidateBatch(edits, lines); err != nil {
		return ApplyResult{}, err
	}

	referenced := map[int]bool{}
	for _, e := range edits {
		switch e.Spec.Kind {
		case KindSingle, KindInsertAfter, KindInsertBefore:
			referenced[e.Spec.Start.Line] = true
		case KindRange:
			referenced[e.Spec.Start.Line] = true
			referenced[e.Spec.End.Line] = true
		}
	}

	resolved := make([]resolvedEdit, len(edits))
	for i, e := range edits {
		resolved[i] = resolvedEdit{
			edit:          e,
			sortLine:      sortLineFor(e.Spec),
			precedence:    precedenceFor(e.Spec.Kind),
			originalIndex: i,
		}
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if a.sortLine != b.sortLine {
			return a.sortLine > b.sortLine
		}
		if a.precedence != b.precedence {
			return a.precedence < b.precedence
		}
		return a.originalIndex < b.originalIndex
	})

	changed := false
	firstChanged := 0

	for _, re := range resolved {
		start, deleteCount, newLines, err := spliceFor(lines, re.edit, referenced)
		if err != nil {
			return ApplyResult{}, err
		}

		oldSpan := append([]string(nil), lines[start:start+deleteCount]...)
		if !sameLines(oldSpan, newLines) {
			changed = true
			line := start + 1
			if firstChanged == 0 || line < firstChanged {
				firstChanged = line
			}
		}

		tail := append([]string(nil), lines[start+deleteCount:]...)
		lines = append(append(lines[:start:start], newLines...), tail...)
	}

	body := strings.Join(lines, "\n")
	result := ApplyResult{Content: fc.Encode(body), Changed: changed}
	if changed {
		result.FirstChangedLine = firstChanged
	}
	return result, nil
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitDst splits a replacement string into lines. An entirely empty
// replacement splits to zero lines (a deletion), not one blank line; any
// other string splits on "\n", so "\n" yields two empty lines.
func splitDst(dst string) []string {
	if dst == "" {
		return []string{}
	}
	return strings.Split(dst, "\n")
}

// spliceFor resolves one edit against the current line slice, applying the
// repair pipeline, and returns the [start, start+deleteCount) span to
// replace and the lines to replace it with.
func spliceFor(lines []string, e Edit, referenced map[int]bool) (start, deleteCount int, newLines []string, err error) {
	dst := splitDst(e.Dst)

	switch e.Spec.Kind {
	case KindSingle:
		idx := e.Spec.Start.Line - 1
		dst = stripDisplayPrefixes(dst)
		dst = stripRangeBoundaryEcho(lines, idx, idx, dst)
		startIdx, endIdx, merged := tryMergeDetect(lines, idx, dst, referenced)
		oldLines := lines[startIdx : endIdx+1]
		repaired := applyContentRepairs(oldLines, merged)
		return startIdx, endIdx - startIdx + 1, repaired, nil

	case KindRange:
		startIdx := e.Spec.Start.Line - 1
		endIdx := e.Spec.End.Line - 1
		dst = stripDisplayPrefixes(dst)
		dst = stripRangeBoundaryEcho(lines, startIdx, endIdx, dst)
		oldLines := lines[startIdx : endIdx+1]
		repaired := applyContentRepairs(oldLines, dst)
		return startIdx, endIdx - startIdx + 1, repaired, nil

	case KindInsertAfter:
		anchor := e.Spec.Start.Line - 1
		dst = stripDisplayPrefixes(dst)
		dst = stripInsertAfterEcho(lines[anchor], dst)
		return anchor + 1, 0, dst, nil

	case KindInsertBefore:
		anchor := e.Spec.Start.Line - 1
		dst = stripDisplayPrefixes(dst)
		dst = stripInsertBeforeEcho(lines[anchor], dst)
		return anchor, 0, dst, nil

	case KindSubstring:
		idx, ferr := findUniqueSubstringLine(lines, e.Spec.Needle)
		if ferr != nil {
			return 0, 0, nil, ferr
		}
		replaced := strings.Replace(lines[idx], e.Spec.Needle, e.Dst, 1)
		return idx, 1, []string{replaced}, nil
	}

	return 0, 0, nil, validationErrorf("unknown edit kind %v", e.Spec.Kind)
}

// findUniqueSubstringLine locates the single line containing needle,
// returning an *AmbiguityError if it's missing or appears on more than one
// line (§4.3, §4.7's "ambiguous substring" case).
func findUniqueSubstringLine(lines []string, needle string) (int, error) {
	var matches []int
	for i, l := range lines {
		if strings.Contains(l, needle) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, &AmbiguityError{
			Kind:    "substring-not-found",
			Message: fmt.Sprintf("substring %q not found in file", needle),
		}
	case 1:
		return matches[0], nil
	default:
		const maxPreview = 5
		previews := make([]string, 0, maxPreview)
		for i, m := range matches {
			if i >= maxPreview {
				break
			}
			previews = append(previews, fmt.Sprintf("  line %d: %s", m+1, lines[m]))
		}
		msg := fmt.Sprintf("substring %q found on %d lines:\n%s", needle, len(matches), strings.Join(previews, "\n"))
		if len(matches) > maxPreview {
			msg += fmt.Sprintf("\n  ...and %d more", len(matches)-maxPreview)
		}
		return 0, &AmbiguityError{Kind: "substring-multiple", Candidates: previews, Message: msg}
	}
}
