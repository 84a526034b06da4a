package hashedit

import (
	"regexp"
	"strconv"
	"strings"
)

// SpecKind tags the variant of a parsed edit spec.
type SpecKind int

const (
	KindSingle SpecKind = iota
	KindRange
	KindInsertAfter
	KindInsertBefore
	KindSubstring
)

func (k SpecKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRange:
		return "range"
	case KindInsertAfter:
		return "insert-after"
	case KindInsertBefore:
		return "insert-before"
	case KindSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// LineRef is a (line, hash) pair, rendered as "L:HH".
type LineRef struct {
	Line int
	Hash string
}

// EditSpec is the parsed form of an edit's src field: one of
// Single / Range / InsertAfter / InsertBefore / Substring.
type EditSpec struct {
	Kind   SpecKind
	Start  LineRef // Single: the ref; Range: start; Insert*: the anchor
	End    LineRef // Range only
	Needle string  // Substring only
}

// Edit pairs a parsed spec with its replacement text.
type Edit struct {
	Src  string
	Dst  string
	Spec EditSpec
}

var (
	refLikeRe  = regexp.MustCompile(`\d+:[0-9a-fA-F]+`)
	multiRefRe = regexp.MustCompile(`,\s*\d+:[0-9a-f]`)
)

// ParseSpec parses a single src string into an EditSpec, following the
// deterministic, ordered algorithm in §4.3.
func ParseSpec(src string) (EditSpec, error) {
	if strings.ContainsAny(src, "\n\r") {
		return EditSpec{}, validationErrorf("invalid src %q: embedded newline", src)
	}

	if loc := refLikeRe.FindStringIndex(src); loc != nil {
		rest := src[loc[1]:]
		if multiRefRe.MatchString(rest) {
			return EditSpec{}, validationErrorf("invalid src %q: looks like a multi-ref list; one edit per src", src)
		}
	}

	trimmed := strings.TrimSpace(src)

	if strings.HasPrefix(trimmed, "..") {
		rest := trimmed[2:]
		if !strings.Contains(rest, "..") {
			ref, err := parseRef(rest)
			if err != nil {
				return EditSpec{}, err
			}
			return EditSpec{Kind: KindInsertBefore, Start: ref}, nil
		}
	}

	if idx := strings.Index(trimmed, ".."); idx >= 0 {
		lhs := trimmed[:idx]
		rhs := trimmed[idx+2:]

		startRef, err := parseRef(lhs)
		if err != nil {
			return EditSpec{}, err
		}

		if strings.TrimSpace(rhs) == "" {
			return EditSpec{Kind: KindInsertAfter, Start: startRef}, nil
		}

		endRef, err := parseRef(rhs)
		if err != nil {
			return EditSpec{}, err
		}

		if startRef.Line == endRef.Line {
			return EditSpec{Kind: KindSingle, Start: startRef}, nil
		}
		return EditSpec{Kind: KindRange, Start: startRef, End: endRef}, nil
	}

	if ref, err := parseRef(trimmed); err == nil {
		return EditSpec{Kind: KindSingle, Start: ref}, nil
	}

	if trimmed == "" {
		return EditSpec{}, validationErrorf("invalid src: empty")
	}
	return EditSpec{Kind: KindSubstring, Needle: trimmed}, nil
}

// parseRef parses "L:HH" (with an optional "| trailer" that is ignored) into
// a LineRef. Hex width up to the canonical HashLen is accepted for
// forward-compatibility.
func parseRef(s string) (LineRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineRef{}, validationErrorf("invalid ref %q: empty", s)
	}

	// Strip everything from the first "|" onward (display-form trailer).
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return LineRef{}, validationErrorf("invalid ref %q: expected L:HH", s)
	}

	lineStr := strings.TrimSpace(parts[0])
	hashStr := strings.TrimSpace(parts[1])

	n, err := strconv.Atoi(lineStr)
	if err != nil {
		return LineRef{}, validationErrorf("invalid ref %q: bad line number", s)
	}
	if n < 1 {
		return LineRef{}, validationErrorf("invalid ref %q: line must be >= 1", s)
	}

	if hashStr == "" || len(hashStr) > HashLen || !isHex(hashStr) {
		return LineRef{}, validationErrorf("invalid ref %q: hash must be 1-%d hex chars", s, HashLen)
	}

	return LineRef{Line: n, Hash: hashStr}, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
