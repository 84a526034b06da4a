package hashedit

import "testing"

func TestParseSpecSingle(t *testing.T) {
	spec, err := ParseSpec("3:ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindSingle {
		t.Fatalf("expected KindSingle, got %v", spec.Kind)
	}
	if spec.Start.Line != 3 || spec.Start.Hash != "ab" {
		t.Errorf("unexpected start ref: %+v", spec.Start)
	}
}

func TestParseSpecRange(t *testing.T) {
	spec, err := ParseSpec("3:ab..7:cd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindRange {
		t.Fatalf("expected KindRange, got %v", spec.Kind)
	}
	if spec.Start.Line != 3 || spec.End.Line != 7 {
		t.Errorf("unexpected range: %+v", spec)
	}
}

func TestParseSpecRangeCollapsesToSingle(t *testing.T) {
	spec, err := ParseSpec("3:ab..3:ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindSingle {
		t.Errorf("equal start/end should coerce to KindSingle, got %v", spec.Kind)
	}
}

func TestParseSpecInsertAfter(t *testing.T) {
	spec, err := ParseSpec("5:ef..")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindInsertAfter {
		t.Fatalf("expected KindInsertAfter, got %v", spec.Kind)
	}
	if spec.Start.Line != 5 {
		t.Errorf("unexpected anchor: %+v", spec.Start)
	}
}

func TestParseSpecInsertBefore(t *testing.T) {
	spec, err := ParseSpec("..5:ef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindInsertBefore {
		t.Fatalf("expected KindInsertBefore, got %v", spec.Kind)
	}
	if spec.Start.Line != 5 {
		t.Errorf("unexpected anchor: %+v", spec.Start)
	}
}

func TestParseSpecSubstring(t *testing.T) {
	spec, err := ParseSpec("  someFunctionCall(x)  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindSubstring {
		t.Fatalf("expected KindSubstring, got %v", spec.Kind)
	}
	if spec.Needle != "someFunctionCall(x)" {
		t.Errorf("expected trimmed needle, got %q", spec.Needle)
	}
}

func TestParseSpecRejectsEmbeddedNewline(t *testing.T) {
	if _, err := ParseSpec("3:ab\n4:cd"); err == nil {
		t.Error("expected error for embedded newline")
	}
}

func TestParseSpecRejectsMultiRef(t *testing.T) {
	if _, err := ParseSpec("3:ab, 4:cd"); err == nil {
		t.Error("expected error for multi-ref src")
	}
}

func TestParseSpecRejectsEmpty(t *testing.T) {
	if _, err := ParseSpec(""); err == nil {
		t.Error("expected error for empty src")
	}
	if _, err := ParseSpec("   "); err == nil {
		t.Error("expected error for whitespace-only src")
	}
}

func TestParseSpecForwardCompatibleHashWidth(t *testing.T) {
	spec, err := ParseSpec("3:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Start.Hash != "a" {
		t.Errorf("expected a single hex-char ref to parse, got %q", spec.Start.Hash)
	}
}

func TestParseSpecFallsBackToSubstringOnInvalidRef(t *testing.T) {
	// "0:ab" fails ref parsing (line must be >= 1) and has no ".." marker,
	// so it falls through to being treated as a literal substring needle.
	spec, err := ParseSpec("0:ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Kind != KindSubstring {
		t.Errorf("expected fallback to KindSubstring, got %v", spec.Kind)
	}
}
