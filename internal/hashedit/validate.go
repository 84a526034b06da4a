package hashedit

import "strings"

// ValidateBatch checks every ref in edits against lines. Fatal problems —
// out-of-range lines, inverted ranges, empty inserts, multi-line substring
// replacements, and empty substring needles — abort the whole batch
// immediately (§4.4's first-error-wins tier). Stale references are instead
// accumulated across the whole batch and returned together as a
// *HashMismatchError, so a caller sees every staleness problem in one pass
// rather than fixing them one at a time.
func ValidateBatch(edits []Edit, lines []string) error {
	var mismatches []HashMismatch

	checkRef := func(ref LineRef) error {
		if ref.Line < 1 || ref.Line > len(lines) {
			return rangeErrorf("line %d out of range (file has %d lines)", ref.Line, len(lines))
		}
		if !hashMatches(ref.Line, lines[ref.Line-1], ref.Hash) {
			mismatches = append(mismatches, HashMismatch{
				Line:     ref.Line,
				Expected: ref.Hash,
				Actual:   LineHash(ref.Line, lines[ref.Line-1]),
			})
		}
		return nil
	}

	for _, e := range edits {
		switch e.Spec.Kind {
		case KindSingle:
			if err := checkRef(e.Spec.Start); err != nil {
				return err
			}

		case KindRange:
			if err := checkRef(e.Spec.Start); err != nil {
				return err
			}
			if err := checkRef(e.Spec.End); err != nil {
				return err
			}
			if e.Spec.Start.Line > e.Spec.End.Line {
				return rangeErrorf("range start line %d is after end line %d", e.Spec.Start.Line, e.Spec.End.Line)
			}

		case KindInsertAfter, KindInsertBefore:
			if err := checkRef(e.Spec.Start); err != nil {
				return err
			}
			if e.Dst == "" {
				return validationErrorf("insert at line %d: replacement text must be non-empty", e.Spec.Start.Line)
			}

		case KindSubstring:
			if e.Spec.Needle == "" {
				return validationErrorf("substring edit: needle must be non-empty")
			}
			if strings.Contains(e.Dst, "\n") {
				return validationErrorf("substring edit %q: replacement must be a single line", e.Spec.Needle)
			}
		}
	}

	if len(mismatches) > 0 {
		return &HashMismatchError{
			Mismatches: mismatches,
			Report:     FormatMismatchReport(mismatches, lines),
		}
	}
	return nil
}
