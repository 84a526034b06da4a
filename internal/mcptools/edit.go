package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symb/internal/delta"
	"github.com/xonecas/symb/internal/fuzzyedit"
	"github.com/xonecas/symb/internal/hashedit"
	"github.com/xonecas/symb/internal/mcp"
)

// HashlineEdit is one {src, dst} pair in an Edit call, per spec §6.
type HashlineEdit struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// EditArgs represents arguments for the Edit tool.
type EditArgs struct {
	File  string         `json:"file"`
	Edits []HashlineEdit `json:"edits"`
}

const editSchema = `{
	"type": "object",
	"properties": {
		"file": {"type": "string", "description": "Path to the file to edit"},
		"edits": {
			"type": "array",
			"description": "Batch of hashline edits, applied bottom-up. Each src is one of L:HH (single line), L1:HH1..L2:HH2 (range), L:HH.. (insert after), ..L:HH (insert before), or a literal substring.",
			"items": {
				"type": "object",
				"properties": {
					"src": {"type": "string", "description": "L:HH | L1:HH1..L2:HH2 | L:HH.. | ..L:HH | a literal substring"},
					"dst": {"type": "string", "description": "Replacement text; empty deletes the referenced span"}
				},
				"required": ["src", "dst"]
			}
		}
	},
	"required": ["file", "edits"]
}`

// NewEditTool creates the Edit tool definition.
func NewEditTool() mcp.Tool {
	return mcp.Tool{
		Name: "Edit",
		Description: `Applies a batch of hash-anchored edits to a file. You MUST Read the file first to get line hashes.
Each src is one of: "L:HH" (replace one line), "L1:HH1..L2:HH2" (replace a range), "L:HH.." (insert after), "..L:HH" (insert before), or a literal substring (replace its first occurrence on the line it uniquely appears on).
If a hash does not match, the file changed since you read it — re-Read and retry using the hashes in the error report.`,
		InputSchema: json.RawMessage(editSchema),
	}
}

// EditHandler handles Edit tool calls.
type EditHandler struct {
	tracker      *FileReadTracker
	deltaTracker *delta.Tracker
}

// NewEditHandler creates a handler for the Edit tool.
func NewEditHandler(tracker *FileReadTracker, dt *delta.Tracker) *EditHandler {
	return &EditHandler{tracker: tracker, deltaTracker: dt}
}

// Handle implements the mcp.ToolHandler interface.
func (h *EditHandler) Handle(_ context.Context, arguments json.RawMessage) (*mcp.ToolResult, error) {
	var args EditArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return toolError("Invalid arguments: %v", err), nil
	}
	if args.File == "" {
		return toolError("File path cannot be empty"), nil
	}
	if len(args.Edits) == 0 {
		return toolError("edits must contain at least one {src, dst} pair"), nil
	}

	absPath, err := validatePath(args.File)
	if err != nil {
		return toolError("%v", err), nil
	}
	if !h.tracker.WasRead(absPath) {
		return toolError("You must Read the file before editing it. Use Read on %s first — you need the line hashes.", args.File), nil
	}

	original, err := os.ReadFile(absPath)
	if err != nil {
		return toolError("Failed to read file: %v", err), nil
	}

	raw := make([]hashedit.RawEdit, len(args.Edits))
	for i, e := range args.Edits {
		raw[i] = hashedit.RawEdit{Src: e.Src, Dst: e.Dst}
	}

	result, err := hashedit.ApplyHashlineEdits(string(original), raw)
	if err != nil {
		return toolError("%s", describeEditError(err)), nil
	}

	if !result.Changed {
		return toolText(fmt.Sprintf("No changes: %s already matches the requested edits.", args.File)), nil
	}

	if h.deltaTracker != nil {
		h.deltaTracker.RecordModify(absPath, original)
	}
	if err := os.WriteFile(absPath, []byte(result.Content), 0o600); err != nil {
		return toolError("Failed to write file: %v", err), nil
	}

	diff := renderUnifiedDiff(args.File, string(original), result.Content)
	tagged := hashedit.FormatHashLines(result.Content, 1)

	text := fmt.Sprintf("Edited %s (changed starting at line %d):\n\n%s\n\nCurrent content:\n\n%s",
		args.File, result.FirstChangedLine, diff, tagged)
	return toolText(text), nil
}

// describeEditError renders the engine's error kinds as caller-facing text,
// surfacing the mismatch report verbatim when one is available.
func describeEditError(err error) string {
	var mismatchErr *hashedit.HashMismatchError
	if errors.As(err, &mismatchErr) {
		return mismatchErr.Report
	}
	return err.Error()
}

// renderUnifiedDiff renders a unified diff for display. This is purely a
// presentation concern for the caller — it plays no part in how the engine
// applies or validates edits.
func renderUnifiedDiff(name, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	unified := gotextdiff.ToUnified(name, name, before, edits)
	return fmt.Sprint(unified)
}

// FuzzyEditArgs represents arguments for the FuzzyEdit tool.
type FuzzyEditArgs struct {
	File                string  `json:"file"`
	OldText             string  `json:"oldText"`
	NewText             string  `json:"newText"`
	AllowFuzzy          bool    `json:"allowFuzzy"`
	SimilarityThreshold float64 `json:"similarityThreshold,omitempty"`
}

const fuzzyEditSchema = `{
	"type": "object",
	"properties": {
		"file":                {"type": "string",  "description": "Path to the file to edit"},
		"oldText":             {"type": "string",  "description": "Text believed to be present in the file"},
		"newText":             {"type": "string",  "description": "Replacement text"},
		"allowFuzzy":          {"type": "boolean", "description": "If oldText isn't found verbatim, allow a whitespace-normalized similarity match"},
		"similarityThreshold": {"type": "number",  "description": "Minimum similarity (0-1) for a fuzzy match; default 0.85"}
	},
	"required": ["file", "oldText", "newText"]
}`

// NewFuzzyEditTool creates the FuzzyEdit tool definition.
func NewFuzzyEditTool() mcp.Tool {
	return mcp.Tool{
		Name: "FuzzyEdit",
		Description: `Replaces oldText with newText in a file. Tries an exact match first; if allowFuzzy is set and no exact match exists, falls back to a whitespace-normalized similarity match. Fails if oldText is ambiguous (multiple equally-good matches) or absent — use Read and the returned diagnostics to narrow the target.`,
		InputSchema: json.RawMessage(fuzzyEditSchema),
	}
}

// FuzzyEditHandler handles FuzzyEdit tool calls.
type FuzzyEditHandler struct {
	tracker           *FileReadTracker
	deltaTracker      *delta.Tracker
	defaultSimilarity float64
}

// NewFuzzyEditHandler creates a handler for the FuzzyEdit tool.
func NewFuzzyEditHandler(tracker *FileReadTracker, dt *delta.Tracker, defaultSimilarity float64) *FuzzyEditHandler {
	return &FuzzyEditHandler{tracker: tracker, deltaTracker: dt, defaultSimilarity: defaultSimilarity}
}

// Handle implements the mcp.ToolHandler interface.
func (h *FuzzyEditHandler) Handle(_ context.Context, arguments json.RawMessage) (*mcp.ToolResult, error) {
	var args FuzzyEditArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return toolError("Invalid arguments: %v", err), nil
	}
	if args.File == "" || args.OldText == "" {
		return toolError("file and oldText are required"), nil
	}

	absPath, err := validatePath(args.File)
	if err != nil {
		return toolError("%v", err), nil
	}
	if !h.tracker.WasRead(absPath) {
		return toolError("You must Read the file before editing it. Use Read on %s first.", args.File), nil
	}

	original, err := os.ReadFile(absPath)
	if err != nil {
		return toolError("Failed to read file: %v", err), nil
	}

	threshold := args.SimilarityThreshold
	if threshold <= 0 {
		threshold = h.defaultSimilarity
	}

	match, err := fuzzyedit.FindEditMatch(string(original), args.OldText, fuzzyedit.Options{
		AllowFuzzy:          args.AllowFuzzy,
		SimilarityThreshold: threshold,
	})
	if err != nil {
		return toolError("%s", err.Error()), nil
	}

	content := string(original)
	updated := content[:match.StartIndex] + args.NewText + content[match.StartIndex+len(match.ActualText):]

	if h.deltaTracker != nil {
		h.deltaTracker.RecordModify(absPath, original)
	}
	if err := os.WriteFile(absPath, []byte(updated), 0o600); err != nil {
		return toolError("Failed to write file: %v", err), nil
	}

	diff := renderUnifiedDiff(args.File, content, updated)
	matchKind := "exact"
	if match.WasFuzzy {
		matchKind = "fuzzy"
	}

	log.Debug().Str("file", args.File).Str("match", matchKind).Msg("fuzzy edit applied")

	return toolText(fmt.Sprintf("Edited %s (%s match):\n\n%s", args.File, matchKind, diff)), nil
}
