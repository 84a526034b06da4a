package hashedit

import (
	"errors"
	"testing"
)

func h(line int, text string) string {
	return LineHash(line, text)
}

func TestApplyEmptyBatchIsNoop(t *testing.T) {
	content := "a\nb\nc\n"
	result, err := ApplyHashlineEdits(content, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != content {
		t.Errorf("expected content unchanged, got %q", result.Content)
	}
	if result.Changed {
		t.Error("empty batch should not report a change")
	}
}

func TestApplySingleReplace(t *testing.T) {
	content := "a\nb\nc\n"
	edits := []RawEdit{{Src: "2:" + h(2, "b"), Dst: "B"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "a\nB\nc\n" {
		t.Errorf("got %q", result.Content)
	}
	if result.FirstChangedLine != 2 {
		t.Errorf("expected firstChangedLine 2, got %d", result.FirstChangedLine)
	}
}

func TestApplyRangeDelete(t *testing.T) {
	content := "a\nb\nc\nd\n"
	edits := []RawEdit{{
		Src: "2:" + h(2, "b") + "..3:" + h(3, "c"),
		Dst: "",
	}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "a\nd\n" {
		t.Errorf("got %q", result.Content)
	}
	if result.FirstChangedLine != 2 {
		t.Errorf("expected firstChangedLine 2, got %d", result.FirstChangedLine)
	}
}

func TestApplyInsertAfter(t *testing.T) {
	content := "a\nb\nc\n"
	edits := []RawEdit{{Src: "2:" + h(2, "b") + "..", Dst: "X\nY"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "a\nb\nX\nY\nc\n" {
		t.Errorf("got %q", result.Content)
	}
	if result.FirstChangedLine != 3 {
		t.Errorf("expected firstChangedLine 3, got %d", result.FirstChangedLine)
	}
}

func TestApplyInsertBefore(t *testing.T) {
	content := "a\nb\nc\n"
	edits := []RawEdit{{Src: ".." + "2:" + h(2, "b"), Dst: "X"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "a\nX\nb\nc\n" {
		t.Errorf("got %q", result.Content)
	}
}

func TestApplyBatchOrderingHighLineFirst(t *testing.T) {
	content := "1\n2\n3\n4\n5\n"
	edits := []RawEdit{
		{Src: "5:" + h(5, "5"), Dst: "E"},
		{Src: "2:" + h(2, "2"), Dst: "B"},
	}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "1\nB\n3\n4\nE\n" {
		t.Errorf("got %q", result.Content)
	}
}

func TestApplyStaleHashAggregatedErrorLeavesContentUntouched(t *testing.T) {
	content := "1\n2\n3\n4\n5\n"
	edits := []RawEdit{
		{Src: "2:ff", Dst: "B"},
		{Src: "5:ff", Dst: "E"},
	}

	result, err := ApplyHashlineEdits(content, edits)
	if err == nil {
		t.Fatal("expected an error for stale hashes")
	}
	var mismatchErr *HashMismatchError
	if !errors.As(err, &mismatchErr) {
		t.Fatalf("expected *HashMismatchError, got %T (%v)", err, err)
	}
	if len(mismatchErr.Mismatches) != 2 {
		t.Errorf("expected 2 mismatches, got %d", len(mismatchErr.Mismatches))
	}
	if result.Content != "" {
		t.Errorf("expected no content returned on error, got %q", result.Content)
	}
}

func TestApplyConfusableHyphenRepair(t *testing.T) {
	original := "range–limited" // U+2013 EN DASH
	content := original + "\n"
	edits := []RawEdit{{Src: "1:" + h(1, original), Dst: original}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "range-limited\n" {
		t.Errorf("expected confusable hyphen normalized, got %q", result.Content)
	}
	if !result.Changed {
		t.Error("expected the hyphen normalization to count as a change")
	}
}

func TestApplyDisplayPrefixStripping(t *testing.T) {
	content := "a\nb\nc\nd\n"
	dst := "12:ab| const x = 1\n13:cd| const y = 2"
	edits := []RawEdit{{
		Src: "2:" + h(2, "b") + "..3:" + h(3, "c"),
		Dst: dst,
	}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "a\nconst x = 1\nconst y = 2\nd\n" {
		t.Errorf("got %q", result.Content)
	}
}

func TestApplyBOMAndCRLFPreserved(t *testing.T) {
	content := bom + "a\r\nb\r\nc\r\n"
	edits := []RawEdit{{Src: "2:" + h(2, "b"), Dst: "B"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := bom + "a\r\nB\r\nc\r\n"
	if result.Content != want {
		t.Errorf("got %q, want %q", result.Content, want)
	}
}

func TestApplySubstringUniqueMatch(t *testing.T) {
	content := "func foo() {\n\treturn oldName()\n}\n"
	edits := []RawEdit{{Src: "oldName()", Dst: "newName()"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "func foo() {\n\treturn newName()\n}\n" {
		t.Errorf("got %q", result.Content)
	}
}

func TestApplySubstringAmbiguousErrors(t *testing.T) {
	content := "x := dup\ny := dup\n"
	edits := []RawEdit{{Src: "dup", Dst: "rep"}}

	_, err := ApplyHashlineEdits(content, edits)
	var ambigErr *AmbiguityError
	if !errors.As(err, &ambigErr) {
		t.Fatalf("expected *AmbiguityError, got %T (%v)", err, err)
	}
}

func TestApplyWhitespacePreservedOnUnrelatedLine(t *testing.T) {
	content := "func a() {\n    return 1\n}\n"
	edits := []RawEdit{{Src: "3:" + h(3, "}"), Dst: "}"}}

	result, err := ApplyHashlineEdits(content, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != content {
		t.Errorf("no-op edit should leave file byte-identical, got %q", result.Content)
	}
}
