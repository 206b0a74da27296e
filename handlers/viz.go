// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides cadence_graph tool for agents
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/commtrack/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewVizHandlers(database *sql.DB, now func() time.Time) *VizHandlers {
	if now == nil {
		now = time.Now
	}
	return &VizHandlers{db: database, now: now}
}

type CadenceGraphInput struct{}

type CadenceGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) CadenceGraph(_ context.Context, request *mcp.CallToolRequest, input CadenceGraphInput) (*mcp.CallToolResult, CadenceGraphOutput, error) {
	dot, err := viz.NewGraphGenerator(h.db).GenerateCadenceGraph(h.now())
	if err != nil {
		return nil, CadenceGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "label=")
	edgeCount := strings.Count(dot, "->")

	return nil, CadenceGraphOutput{
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
