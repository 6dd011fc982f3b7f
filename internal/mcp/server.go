// Package mcp exposes one interaction as Model Context Protocol tools, so
// an agent can inspect and edit the block tree over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/matzehuels/blockflow/pkg/buildinfo"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/store"
)

// Server wraps an MCP server bound to a single interaction.
type Server struct {
	in    *interaction.Interaction
	store store.Store // optional; enables the snapshot tools
	mcp   *server.MCPServer
}

// NewServer creates a server for in. st may be nil.
func NewServer(in *interaction.Interaction, st store.Store) *Server {
	s := &Server{in: in, store: st}

	s.mcp = server.NewMCPServer(
		"blockflow",
		buildinfo.Get().Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(getTreeTool, s.handleGetTree)
	s.mcp.AddTool(listBlocksTool, s.handleListBlocks)
	s.mcp.AddTool(addBlockTool, s.handleAddBlock)
	s.mcp.AddTool(removeBlockTool, s.handleRemoveBlock)
	s.mcp.AddTool(moveBlockTool, s.handleMoveBlock)
	s.mcp.AddTool(copyBlockTool, s.handleCopyBlock)
	s.mcp.AddTool(zoomTool, s.handleZoom)
	s.mcp.AddTool(renderSVGTool, s.handleRenderSVG)
	if s.store != nil {
		s.mcp.AddTool(saveSnapshotTool, s.handleSaveSnapshot)
		s.mcp.AddTool(loadSnapshotTool, s.handleLoadSnapshot)
	}
}

// Serve runs the MCP server on stdio. Stdout carries protocol messages, so
// all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
