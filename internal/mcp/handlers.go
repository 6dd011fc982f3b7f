package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/render/svg"
	"github.com/matzehuels/blockflow/pkg/store"
)

// blockSummary is one entry of list_blocks.
type blockSummary struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parent_id,omitempty"`
	Data     block.Data `json:"data,omitempty"`
	Rect     geom.Rect  `json:"rect"`
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := s.in.Export()
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(t)
}

func (s *Server) handleListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc := s.in.Scene()
	out := make([]blockSummary, 0, len(sc.Blocks))
	for _, p := range sc.Blocks {
		out = append(out, blockSummary{ID: p.ID, ParentID: p.ParentID, Data: p.Data, Rect: p.Rect})
	}
	return jsonResult(out)
}

func (s *Server) handleAddBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data := block.Data{}
	if raw := request.GetString("data", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("data must be a JSON object: %v", err)), nil
		}
	}

	var (
		out interaction.Outcome
		err error
	)
	if parent := request.GetString("parent_id", ""); parent != "" {
		out, err = s.in.AddChild(ctx, parent, data)
	} else {
		out, err = s.in.AddRoot(ctx, data)
	}
	return outcomeResult(out, err)
}

func (s *Server) handleRemoveBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	var out interaction.Outcome
	if request.GetBool("subtree", false) {
		out, err = s.in.RemoveSubtree(ctx, id)
	} else {
		out, err = s.in.RemoveNode(ctx, id)
	}
	return outcomeResult(out, err)
}

func (s *Server) handleMoveBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, parent, res := requireIDAndParent(request)
	if res != nil {
		return res, nil
	}
	out, err := s.in.Reparent(ctx, id, parent)
	return outcomeResult(out, err)
}

func (s *Server) handleCopyBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, parent, res := requireIDAndParent(request)
	if res != nil {
		return res, nil
	}
	out, err := s.in.CopyTo(ctx, id, parent)
	return outcomeResult(out, err)
}

func (s *Server) handleZoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := request.GetArguments()["value"]; ok {
		if err := s.in.SetZoom(ctx, request.GetFloat("value", 0)); err != nil {
			return toolError(err), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("zoom: %g", s.in.Zoom())), nil
}

func (s *Server) handleRenderSVG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var opts []svg.SVGOption
	if key := request.GetString("label_key", ""); key != "" {
		opts = append(opts, svg.WithLabelKey(key))
	}
	if ids := request.GetString("highlight", ""); ids != "" {
		opts = append(opts, svg.WithHighlight(strings.Split(ids, ",")...))
	}
	return mcp.NewToolResultText(string(svg.RenderSVG(s.in.Scene(), opts...))), nil
}

func (s *Server) handleSaveSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	snap, err := store.Capture(s.in, name)
	if err != nil {
		return toolError(err), nil
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved snapshot %q (%d blocks)", name, snap.Tree.Size())), nil
}

func (s *Server) handleLoadSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return toolError(err), nil
	}
	if _, err := store.Restore(ctx, s.in, snap); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("loaded snapshot %q (%d blocks)", name, s.in.Len())), nil
}

// =============================================================================
// Helpers
// =============================================================================

func requireIDAndParent(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	id, err := request.RequireString("id")
	if err != nil {
		return "", "", mcp.NewToolResultError("missing required parameter: id")
	}
	parent, err := request.RequireString("parent_id")
	if err != nil {
		return "", "", mcp.NewToolResultError("missing required parameter: parent_id")
	}
	return id, parent, nil
}

// outcomeResult reports a mutation. A declined mutation is not an error.
func outcomeResult(out interaction.Outcome, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

func toolError(err error) *mcp.CallToolResult {
	if code := errors.GetCode(err); code != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", code, errors.UserMessage(err)))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
