// Command hashedit runs the hashedit MCP server: a stdio JSON-RPC tool host
// exposing Read, Edit, FuzzyEdit, and Undo to an MCP-speaking agent.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symb/internal/config"
	"github.com/xonecas/symb/internal/delta"
	"github.com/xonecas/symb/internal/mcp"
	"github.com/xonecas/symb/internal/mcptools"
)

func main() {
	configPath := flag.String("config", "", "path to hashedit.toml (defaults to ~/.config/hashedit/config.toml if present)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := setupLogging(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set up logging: %v\n", err)
	}

	proxy := mcp.NewProxy()
	tracker := mcptools.NewFileReadTracker()

	dt, err := setupUndoTracker(cfg.Undo)
	if err != nil {
		log.Warn().Err(err).Msg("undo tracking disabled")
	}

	proxy.RegisterTool(mcptools.NewReadTool(), mcptools.NewReadHandler(tracker).Handle)
	proxy.RegisterTool(mcptools.NewEditTool(), mcptools.NewEditHandler(tracker, dt).Handle)
	proxy.RegisterTool(mcptools.NewFuzzyEditTool(), mcptools.NewFuzzyEditHandler(tracker, dt, cfg.Fuzzy.ThresholdOrDefault()).Handle)
	proxy.RegisterTool(mcptools.NewUndoTool(), mcptools.NewUndoHandler(dt).Handle)

	log.Info().Int("tools", proxy.LocalToolCount()).Msg("hashedit server ready")

	if err := serveStdio(context.Background(), proxy); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func loadConfig(explicitPath string) (*config.Config, error) {
	path := explicitPath
	if path == "" {
		if dataDir, err := config.DataDir(); err == nil {
			candidate := filepath.Join(dataDir, "config.toml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(lc config.LogConfig) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(lc.LevelOrDefault())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logPath := lc.Path
	if logPath == "" {
		dataDir, err := config.EnsureDataDir()
		if err != nil {
			return err
		}
		logDir := filepath.Join(dataDir, "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			return err
		}
		logPath = filepath.Join(logDir, "hashedit.log")
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.Logger = log.Output(file)
	return nil
}

func setupUndoTracker(uc config.UndoConfig) (*delta.Tracker, error) {
	if !uc.Enabled {
		return nil, nil
	}
	dbPath := uc.DBPath
	if dbPath == "" {
		dataDir, err := config.EnsureDataDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dataDir, "undo.db")
	}
	db, err := delta.OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	tr := delta.New(db)
	tr.SetSession(newSessionID())
	return tr, nil
}

func newSessionID() string {
	return fmt.Sprintf("hashedit-%d", os.Getpid())
}

// serveStdio reads newline-delimited JSON-RPC requests from stdin and
// writes responses to stdout, one per line, until stdin is closed.
func serveStdio(ctx context.Context, proxy *mcp.Proxy) error {
	reader := bufio.NewReader(os.Stdin)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			resp := handleLine(ctx, proxy, line)
			if resp != nil {
				data, marshalErr := json.Marshal(resp)
				if marshalErr != nil {
					log.Error().Err(marshalErr).Msg("failed to marshal response")
					continue
				}
				writer.Write(data)
				writer.WriteByte('\n')
				writer.Flush()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read stdin: %w", err)
		}
	}
}

func handleLine(ctx context.Context, proxy *mcp.Proxy, line []byte) *mcp.Response {
	var req mcp.Request
	if err := json.Unmarshal(line, &req); err != nil {
		return mcp.NewErrorResponse(nil, mcp.ErrorCodeParseError, fmt.Sprintf("invalid JSON: %v", err))
	}

	switch req.Method {
	case "tools/list":
		tools, err := proxy.ListTools(ctx)
		if err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInternalError, err.Error())
		}
		resp, err := mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: tools})
		if err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInternalError, err.Error())
		}
		return resp

	case "tools/call":
		var params mcp.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		}
		result, err := proxy.CallTool(ctx, params.Name, params.Arguments)
		if err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInternalError, err.Error())
		}
		resp, err := mcp.NewResponse(req.ID, result)
		if err != nil {
			return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeInternalError, err.Error())
		}
		return resp

	default:
		return mcp.NewErrorResponse(req.ID, mcp.ErrorCodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}
