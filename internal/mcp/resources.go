package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const treeURI = "blockflow://tree"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		treeURI,
		"Block Tree",
		mcp.WithMIMEType("application/json"),
	), s.handleTreeResource)
}

func (s *Server) handleTreeResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	t, err := s.in.Export()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      treeURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
