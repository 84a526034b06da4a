// Package mcp implements Model Context Protocol server plumbing: request/
// response envelopes and a Proxy that dispatches tool calls to locally
// registered handlers.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ToolHandler is a function that handles a tool call.
type ToolHandler func(ctx context.Context, arguments json.RawMessage) (*ToolResult, error)

// Proxy dispatches tool calls to locally registered handlers.
type Proxy struct {
	mu            sync.RWMutex
	localTools    map[string]Tool
	localHandlers map[string]ToolHandler
}

// NewProxy creates a new MCP proxy.
func NewProxy() *Proxy {
	return &Proxy{
		localTools:    make(map[string]Tool),
		localHandlers: make(map[string]ToolHandler),
	}
}

// RegisterTool registers a local tool with the proxy.
func (p *Proxy) RegisterTool(tool Tool, handler ToolHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localTools[tool.Name] = tool
	p.localHandlers[tool.Name] = handler
}

// ListTools returns all registered tools.
func (p *Proxy) ListTools(_ context.Context) ([]Tool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tools := make([]Tool, 0, len(p.localTools))
	for _, t := range p.localTools {
		tools = append(tools, t)
	}
	return tools, nil
}

// CallTool invokes a registered tool by name.
func (p *Proxy) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*ToolResult, error) {
	p.mu.RLock()
	handler, ok := p.localHandlers[name]
	p.mu.RUnlock()

	if !ok {
		return &ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("tool not found: %s", name)}},
			IsError: true,
		}, nil
	}
	return handler(ctx, arguments)
}

// LocalToolCount returns the number of registered tools.
func (p *Proxy) LocalToolCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.localTools)
}
