package mcp

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/store"
)

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	in, err := interaction.New(interaction.DefaultConfig(),
		interaction.WithRenderer(bridge.Static{}),
		interaction.WithIDGenerator(block.NewSequence("b")),
	)
	if err != nil {
		t.Fatalf("interaction.New: %v", err)
	}
	t.Cleanup(func() { in.Destroy() })
	return NewServer(in, st)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"get_tree", getTreeTool, "get_tree"},
		{"list_blocks", listBlocksTool, "list_blocks"},
		{"add_block", addBlockTool, "add_block"},
		{"remove_block", removeBlockTool, "remove_block"},
		{"move_block", moveBlockTool, "move_block"},
		{"copy_block", copyBlockTool, "copy_block"},
		{"zoom", zoomTool, "zoom"},
		{"render_svg", renderSVGTool, "render_svg"},
		{"save_snapshot", saveSnapshotTool, "save_snapshot"},
		{"load_snapshot", loadSnapshotTool, "load_snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != nil {
		t.Error("store should be nil")
	}
}

func TestBlockTools(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("empty tree", func(t *testing.T) {
		result := call(t, srv.handleGetTree, map[string]any{})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if got := resultText(t, result); got != "null" {
			t.Errorf("tree = %q, want null", got)
		}
	})

	t.Run("add root and children", func(t *testing.T) {
		result := call(t, srv.handleAddBlock, map[string]any{"data": `{"label":"start"}`})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		var out interaction.Outcome
		if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
			t.Fatal(err)
		}
		if out.Op != interaction.OpAddRoot || !out.Committed || out.Target != "" || !slices.Equal(out.Created, []string{"b1"}) {
			t.Errorf("outcome = %+v", out)
		}

		for range 2 {
			result = call(t, srv.handleAddBlock, map[string]any{"parent_id": "b1"})
			if result.IsError {
				t.Fatalf("unexpected tool error: %v", result.Content)
			}
		}
	})

	t.Run("second root", func(t *testing.T) {
		result := call(t, srv.handleAddBlock, map[string]any{})
		if !result.IsError {
			t.Fatal("expected error for second root")
		}
		if !strings.Contains(resultText(t, result), "INVALID_STATE") {
			t.Errorf("error = %q", resultText(t, result))
		}
	})

	t.Run("bad data", func(t *testing.T) {
		result := call(t, srv.handleAddBlock, map[string]any{"parent_id": "b1", "data": "[1,2]"})
		if !result.IsError {
			t.Error("expected error for non-object data")
		}
	})

	t.Run("move and copy", func(t *testing.T) {
		result := call(t, srv.handleMoveBlock, map[string]any{"id": "b3", "parent_id": "b2"})
		if result.IsError {
			t.Fatalf("move: %v", result.Content)
		}
		result = call(t, srv.handleCopyBlock, map[string]any{"id": "b2", "parent_id": "b1"})
		if result.IsError {
			t.Fatalf("copy: %v", result.Content)
		}
		if got := srv.in.Len(); got != 5 {
			t.Errorf("blocks = %d, want 5", got)
		}
	})

	t.Run("move into own subtree", func(t *testing.T) {
		result := call(t, srv.handleMoveBlock, map[string]any{"id": "b2", "parent_id": "b3"})
		if !result.IsError {
			t.Error("expected error for cyclic move")
		}
	})

	t.Run("missing parameters", func(t *testing.T) {
		for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
			"move":   srv.handleMoveBlock,
			"copy":   srv.handleCopyBlock,
			"remove": srv.handleRemoveBlock,
		} {
			if result := call(t, handler, map[string]any{}); !result.IsError {
				t.Errorf("%s: expected error for missing id", name)
			}
		}
	})

	t.Run("list blocks", func(t *testing.T) {
		var blocks []blockSummary
		if err := json.Unmarshal([]byte(resultText(t, call(t, srv.handleListBlocks, nil))), &blocks); err != nil {
			t.Fatal(err)
		}
		if len(blocks) != 5 {
			t.Fatalf("listed %d blocks, want 5", len(blocks))
		}
		if blocks[0].ID != "b1" || blocks[0].ParentID != "" {
			t.Errorf("first block = %+v", blocks[0])
		}
		if blocks[0].Data["label"] != "start" {
			t.Errorf("root data = %v", blocks[0].Data)
		}
	})

	t.Run("remove subtree", func(t *testing.T) {
		result := call(t, srv.handleRemoveBlock, map[string]any{"id": "b2", "subtree": true})
		if result.IsError {
			t.Fatalf("remove: %v", result.Content)
		}
		if got := srv.in.Len(); got != 3 {
			t.Errorf("blocks = %d, want 3", got)
		}
	})

	t.Run("remove unknown", func(t *testing.T) {
		result := call(t, srv.handleRemoveBlock, map[string]any{"id": "nope"})
		if !result.IsError {
			t.Error("expected error for unknown block")
		}
	})
}

func TestZoomTool(t *testing.T) {
	srv := newTestServer(t, nil)

	if got := resultText(t, call(t, srv.handleZoom, nil)); got != "zoom: 1" {
		t.Errorf("zoom = %q", got)
	}
	if got := resultText(t, call(t, srv.handleZoom, map[string]any{"value": 1.5})); got != "zoom: 1.5" {
		t.Errorf("zoom = %q", got)
	}
	if result := call(t, srv.handleZoom, map[string]any{"value": 0.0}); !result.IsError {
		t.Error("expected error for zero zoom")
	}
}

func TestRenderSVGTool(t *testing.T) {
	srv := newTestServer(t, nil)
	call(t, srv.handleAddBlock, map[string]any{"data": `{"title":"Hello"}`})

	got := resultText(t, call(t, srv.handleRenderSVG, map[string]any{"label_key": "title", "highlight": "b1"}))
	if !strings.HasPrefix(got, "<svg") {
		t.Errorf("not an svg document: %.40q", got)
	}
	if !strings.Contains(got, "Hello") {
		t.Error("label missing from svg")
	}
}

func TestSnapshotTools(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, st)
	call(t, srv.handleAddBlock, map[string]any{})
	call(t, srv.handleAddBlock, map[string]any{"parent_id": "b1"})

	result := call(t, srv.handleSaveSnapshot, map[string]any{"name": "flow"})
	if result.IsError {
		t.Fatalf("save: %v", result.Content)
	}

	call(t, srv.handleRemoveBlock, map[string]any{"id": "b1", "subtree": true})
	if srv.in.Len() != 0 {
		t.Fatalf("blocks = %d after remove", srv.in.Len())
	}

	result = call(t, srv.handleLoadSnapshot, map[string]any{"name": "flow"})
	if result.IsError {
		t.Fatalf("load: %v", result.Content)
	}
	if srv.in.Len() != 2 {
		t.Errorf("blocks = %d after load, want 2", srv.in.Len())
	}

	for _, name := range []string{"../escape", "missing"} {
		if result := call(t, srv.handleLoadSnapshot, map[string]any{"name": name}); !result.IsError {
			t.Errorf("load %q: expected error", name)
		}
	}
}

func TestTreeResource(t *testing.T) {
	srv := newTestServer(t, nil)
	call(t, srv.handleAddBlock, map[string]any{"data": `{"label":"root"}`})

	contents, err := srv.handleTreeResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents", len(contents))
	}
	text := contents[0].(mcp.TextResourceContents)
	var tree block.Tree
	if err := json.Unmarshal([]byte(text.Text), &tree); err != nil {
		t.Fatal(err)
	}
	if tree.ID != "b1" || tree.Data["label"] != "root" {
		t.Errorf("tree = %+v", tree)
	}
}
