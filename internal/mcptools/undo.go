package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/symb/internal/delta"
	"github.com/xonecas/symb/internal/mcp"
)

// UndoArgs represents arguments for the Undo tool.
type UndoArgs struct {
	Steps int `json:"steps,omitempty"`
}

const undoSchema = `{
	"type": "object",
	"properties": {
		"steps": {"type": "integer", "description": "Number of most-recent writes to reverse, newest first. Defaults to 1."}
	}
}`

// NewUndoTool creates the Undo tool definition.
func NewUndoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "Undo",
		Description: `Reverses the most recent writes made by Edit or FuzzyEdit, restoring each file's content from before that write. Pass steps to reverse more than one, newest first. Each write is its own undo step — undoing twice after two edits to the same file restores it two versions back.`,
		InputSchema: json.RawMessage(undoSchema),
	}
}

// UndoHandler handles Undo tool calls.
type UndoHandler struct {
	tracker *delta.Tracker
}

// NewUndoHandler creates a handler for the Undo tool. tracker may be nil if
// undo tracking is disabled, in which case every call fails.
func NewUndoHandler(tracker *delta.Tracker) *UndoHandler {
	return &UndoHandler{tracker: tracker}
}

// Handle implements the mcp.ToolHandler interface.
func (h *UndoHandler) Handle(_ context.Context, arguments json.RawMessage) (*mcp.ToolResult, error) {
	if h.tracker == nil {
		return toolError("Undo is disabled (no undo database configured)."), nil
	}

	var args UndoArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return toolError("Invalid arguments: %v", err), nil
		}
	}
	steps := args.Steps
	if steps < 1 {
		steps = 1
	}

	affected, err := h.tracker.Undo(steps)
	if err != nil {
		return toolError("Undo failed: %v", err), nil
	}
	if len(affected) == 0 {
		return toolText("Nothing to undo."), nil
	}

	return toolText(fmt.Sprintf("Restored %d file(s):\n%s", len(affected), strings.Join(affected, "\n"))), nil
}
