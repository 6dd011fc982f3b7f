package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Connector is the elbow line from a parent block to one of its children.
type Connector struct {
	ParentID string       `json:"parentId" yaml:"parentId"`
	ChildID  string       `json:"childId" yaml:"childId"`
	Points   []geom.Point `json:"points" yaml:"points"`
}

// Path renders the connector as SVG path data using absolute commands.
func (c Connector) Path() string {
	if len(c.Points) == 0 {
		return ""
	}
	var sb strings.Builder
	p := c.Points[0]
	sb.WriteString("M" + num(p.X) + "," + num(p.Y))
	for _, q := range c.Points[1:] {
		switch {
		case q == p:
			continue
		case q.Y == p.Y:
			sb.WriteString(" H" + num(q.X))
		case q.X == p.X:
			sb.WriteString(" V" + num(q.Y))
		default:
			sb.WriteString(" L" + num(q.X) + "," + num(q.Y))
		}
		p = q
	}
	return sb.String()
}

// Translate returns c moved by d.
func (c Connector) Translate(d geom.Point) Connector {
	pts := make([]geom.Point, len(c.Points))
	for i, p := range c.Points {
		pts[i] = p.Add(d)
	}
	c.Points = pts
	return c
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// Connectors computes one connector per parent/child pair from the blocks'
// current positions, in store order.
func (e *Engine) Connectors(s *block.Store) []Connector {
	var out []Connector
	for _, b := range s.Blocks() {
		if b.IsRoot() {
			continue
		}
		p, ok := s.Get(b.ParentID)
		if !ok {
			continue
		}
		out = append(out, e.connect(p.Rect(), b.Rect(), p.ID, b.ID))
	}
	return out
}

// ConnectorsWithin returns the connectors whose endpoints both lie in ids.
func ConnectorsWithin(cs []Connector, ids map[string]bool) []Connector {
	var out []Connector
	for _, c := range cs {
		if ids[c.ParentID] && ids[c.ChildID] {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) connect(parent, child geom.Rect, parentID, childID string) Connector {
	var pts []geom.Point
	if e.cfg.Orientation == LeftRight {
		start := geom.Point{X: parent.Right(), Y: parent.Top + parent.Height/2}
		end := geom.Point{X: child.Left, Y: child.Top + child.Height/2}
		midX := start.X + (end.X-start.X)/2
		pts = []geom.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
	} else {
		start := geom.Point{X: parent.Left + parent.Width/2, Y: parent.Bottom()}
		end := geom.Point{X: child.Left + child.Width/2, Y: child.Top}
		midY := start.Y + (end.Y-start.Y)/2
		pts = []geom.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
	}
	return Connector{ParentID: parentID, ChildID: childID, Points: pts}
}
