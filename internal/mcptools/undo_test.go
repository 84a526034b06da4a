package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xonecas/symb/internal/delta"
)

func newTestUndoTracker(t *testing.T) *delta.Tracker {
	t.Helper()
	db, err := delta.OpenDB(filepath.Join(t.TempDir(), "undo.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tr := delta.New(db)
	tr.SetSession("test-session")
	return tr
}

func callUndo(t *testing.T, handler *UndoHandler, args UndoArgs) (string, bool) {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	result, err := handler.Handle(context.Background(), argsJSON)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	text := ""
	if len(result.Content) > 0 {
		text = result.Content[0].Text
	}
	return text, result.IsError
}

func TestUndoRestoresPreviousEdit(t *testing.T) {
	content := "a\nb\nc"
	path, cleanup := setupTestFile(t, content)
	defer cleanup()

	tr := newTestUndoTracker(t)
	ft := NewFileReadTracker()
	ft.MarkRead(path)
	editHandler := NewEditHandler(ft, tr)

	h2 := hashSrc(2, "b")
	_, isErr := callEdit(t, editHandler, EditArgs{
		File:  filepath.Base(path),
		Edits: []HashlineEdit{{Src: "2:" + h2, Dst: "B"}},
	})
	if isErr {
		t.Fatal("setup edit failed")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "a\nB\nc" {
		t.Fatalf("setup edit didn't apply, got %q", got)
	}

	undoHandler := NewUndoHandler(tr)
	text, isErr := callUndo(t, undoHandler, UndoArgs{})
	if isErr {
		t.Fatalf("unexpected undo error: %s", text)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("readback: %v", err)
	}
	if string(got) != content {
		t.Errorf("expected undo to restore %q, got %q", content, got)
	}
}

func TestUndoWithNoTrackerFails(t *testing.T) {
	handler := NewUndoHandler(nil)
	text, isErr := callUndo(t, handler, UndoArgs{})
	if !isErr {
		t.Errorf("expected an error when undo tracking is disabled, got %q", text)
	}
}

func TestUndoWithNothingRecordedIsANoOp(t *testing.T) {
	tr := newTestUndoTracker(t)
	handler := NewUndoHandler(tr)
	text, isErr := callUndo(t, handler, UndoArgs{})
	if isErr {
		t.Fatalf("unexpected error: %s", text)
	}
	if text != "Nothing to undo." {
		t.Errorf("expected a no-op message, got %q", text)
	}
}
