package mcp

import "github.com/mark3labs/mcp-go/mcp"

var getTreeTool = mcp.NewTool("get_tree",
	mcp.WithDescription("Get the block tree as nested JSON ({id, data, children}). Returns null for an empty canvas."),
)

var listBlocksTool = mcp.NewTool("list_blocks",
	mcp.WithDescription("List every block with its parent and its position on the canvas."),
)

var addBlockTool = mcp.NewTool("add_block",
	mcp.WithDescription("Add a block. Without parent_id the block becomes the root, which only works on an empty canvas."),
	mcp.WithString("parent_id",
		mcp.Description("Id of the parent block (optional)"),
	),
	mcp.WithString("data",
		mcp.Description(`JSON object stored as the block payload, e.g. {"label":"Review"}`),
	),
)

var removeBlockTool = mcp.NewTool("remove_block",
	mcp.WithDescription("Remove a block. By default its children move up to its parent; set subtree to remove them too."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Id of the block to remove"),
	),
	mcp.WithBoolean("subtree",
		mcp.Description("Remove the block together with all descendants (default false)"),
	),
	mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
)

var moveBlockTool = mcp.NewTool("move_block",
	mcp.WithDescription("Attach a block, with its subtree, to a new parent."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Id of the block to move")),
	mcp.WithString("parent_id", mcp.Required(), mcp.Description("Id of the new parent")),
)

var copyBlockTool = mcp.NewTool("copy_block",
	mcp.WithDescription("Copy a block and its subtree under a parent. The copies get fresh ids."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Id of the block to copy")),
	mcp.WithString("parent_id", mcp.Required(), mcp.Description("Id of the parent for the copy")),
)

var zoomTool = mcp.NewTool("zoom",
	mcp.WithDescription("Get or set the zoom factor. Without a value the current zoom is returned."),
	mcp.WithNumber("value", mcp.Description("New zoom factor, greater than zero")),
)

var renderSVGTool = mcp.NewTool("render_svg",
	mcp.WithDescription("Render the canvas as an SVG document."),
	mcp.WithString("highlight", mcp.Description("Comma-separated block ids to outline")),
	mcp.WithString("label_key", mcp.Description("Payload key used as the block label (default label)")),
)

var saveSnapshotTool = mcp.NewTool("save_snapshot",
	mcp.WithDescription("Save the current tree, anchor and zoom under a name."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Snapshot name (letters, digits, dot, dash, underscore)")),
)

var loadSnapshotTool = mcp.NewTool("load_snapshot",
	mcp.WithDescription("Replace the canvas with a saved snapshot."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Snapshot name")),
)

func boolPtr(v bool) *bool { return &v }
