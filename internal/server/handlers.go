package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/buildinfo"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/render/nodelink"
	"github.com/matzehuels/blockflow/pkg/render/svg"
)

// =============================================================================
// Request Types
// =============================================================================

type addBlockRequest struct {
	ParentID string     `json:"parent_id"`
	Data     block.Data `json:"data"`
}

type parentRequest struct {
	ParentID string `json:"parent_id"`
}

type eventsRequest struct {
	Handles []interaction.Handle `json:"handles,omitempty"`
	Events  []interaction.Event  `json:"events"`
}

type eventsResponse struct {
	Outcomes []interaction.Outcome `json:"outcomes"`
	State    string                `json:"state"`
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get().Version,
		"blocks":  s.in.Len(),
	})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	t, err := s.in.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handlePutTree replaces the tree. The body is JSON, or YAML when the
// content type says so. Optional x and y query parameters set the anchor.
func (s *Server) handlePutTree(w http.ResponseWriter, r *http.Request) {
	format := blockio.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = blockio.FormatYAML
	}
	t, err := blockio.ReadTree(http.MaxBytesReader(w, r.Body, maxBody), format)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tree"))
		return
	}
	anchor, err := anchorFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.in.Import(r.Context(), t, anchor)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFlat(w http.ResponseWriter, r *http.Request) {
	records, err := s.in.ExportFlat()
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []block.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.in.Scene())
}

// handleAddBlock adds a child of parent_id, or the root when parent_id is empty.
func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var (
		out interaction.Outcome
		err error
	)
	if req.ParentID == "" {
		out, err = s.in.AddRoot(r.Context(), req.Data)
	} else {
		out, err = s.in.AddChild(r.Context(), req.ParentID, req.Data)
	}
	s.respondOutcome(w, out, err, http.StatusCreated)
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		out interaction.Outcome
		err error
	)
	if subtree, _ := strconv.ParseBool(r.URL.Query().Get("subtree")); subtree {
		out, err = s.in.RemoveSubtree(r.Context(), id)
	} else {
		out, err = s.in.RemoveNode(r.Context(), id)
	}
	s.respondOutcome(w, out, err, http.StatusOK)
}

func (s *Server) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var req parentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.in.Reparent(r.Context(), chi.URLParam(r, "id"), req.ParentID)
	s.respondOutcome(w, out, err, http.StatusOK)
}

func (s *Server) handleCopyBlock(w http.ResponseWriter, r *http.Request) {
	var req parentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.in.CopyTo(r.Context(), chi.URLParam(r, "id"), req.ParentID)
	s.respondOutcome(w, out, err, http.StatusCreated)
}

// handleEvents registers the given handles and feeds the events in order.
// It returns the outcome of every pointer-up.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var req eventsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	outcomes, err := s.in.Run(r.Context(), interaction.Script{Handles: req.Handles, Events: req.Events})
	if len(outcomes) > 0 {
		s.publish()
	}
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "event replay failed")
		}
		writeError(w, err)
		return
	}
	if outcomes == nil {
		outcomes = []interaction.Outcome{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Outcomes: outcomes, State: s.in.State().String()})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.in.SetZoom(r.Context(), req.Zoom); err != nil {
		writeError(w, err)
		return
	}
	s.publish()
	writeJSON(w, http.StatusOK, zoomRequest{Zoom: s.in.Zoom()})
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.in.Pan(req.DX, req.DY); err != nil {
		writeError(w, err)
		return
	}
	s.publish()
	writeJSON(w, http.StatusOK, s.in.Scene())
}

// handleRenderSVG serves the canvas. ?highlight=a,b outlines blocks.
func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	opts := []svg.SVGOption{svg.WithInteraction()}
	if s.cfg.HighlightColor != "" {
		opts = append(opts, svg.WithHighlightColor(s.cfg.HighlightColor))
	}
	if ids := splitList(r.URL.Query().Get("highlight")); len(ids) > 0 {
		opts = append(opts, svg.WithHighlight(ids...))
	}
	if key := r.URL.Query().Get("label"); key != "" {
		opts = append(opts, svg.WithLabelKey(key))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg.RenderSVG(s.in.Scene(), opts...))
}

func (s *Server) handleRenderDOT(w http.ResponseWriter, r *http.Request) {
	t, err := s.in.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	dot := nodelink.ToDOT(t, nodelink.Options{
		LabelKey:    r.URL.Query().Get("label"),
		Orientation: s.in.Config().Layout.Orientation,
		Highlight:   splitList(r.URL.Query().Get("highlight")),
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) respondOutcome(w http.ResponseWriter, out interaction.Outcome, err error, status int) {
	if err != nil {
		writeError(w, err)
		return
	}
	if out.Committed {
		s.publish()
	} else {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}

func anchorFromQuery(r *http.Request) (*geom.Point, error) {
	q := r.URL.Query()
	if q.Get("x") == "" && q.Get("y") == "" {
		return nil, nil
	}
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		return nil, errors.InvalidArgument("anchor needs numeric x and y")
	}
	return &geom.Point{X: x, Y: y}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
