package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
)

// cellKind selects the style a grid cell is drawn with.
type cellKind uint8

const (
	kindBlank cellKind = iota
	kindLine
	kindBlock
	kindArmed
	kindProxy
)

type cell struct {
	r    rune
	kind cellKind
}

// grid is a character raster of the visible canvas. Coordinates passed to
// its drawing methods are screen pixels; cw and ch give the pixel size of
// one cell.
type grid struct {
	cols, rows int
	cw, ch     float64
	cells      [][]cell
}

func newGrid(cols, rows int, cw, ch float64) *grid {
	g := &grid{cols: max(cols, 0), rows: max(rows, 0), cw: cw, ch: ch}
	g.cells = make([][]cell, g.rows)
	for r := range g.cells {
		g.cells[r] = make([]cell, g.cols)
		for c := range g.cells[r] {
			g.cells[r][c] = cell{r: ' '}
		}
	}
	return g
}

func (g *grid) col(x float64) int { return int(math.Floor(x / g.cw)) }
func (g *grid) row(y float64) int { return int(math.Floor(y / g.ch)) }

func (g *grid) set(c, r int, ch rune, kind cellKind) {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return
	}
	g.cells[r][c] = cell{r: ch, kind: kind}
}

func (g *grid) get(c, r int) cell {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return cell{}
	}
	return g.cells[r][c]
}

// polyline draws an axis-aligned connector path.
func (g *grid) polyline(pts []geom.Point) {
	for n := 1; n < len(pts); n++ {
		a, b := pts[n-1], pts[n]
		c0, r0 := g.col(a.X), g.row(a.Y)
		c1, r1 := g.col(b.X), g.row(b.Y)
		switch {
		case r0 == r1:
			for c := min(c0, c1); c <= max(c0, c1); c++ {
				g.line(c, r0, '─')
			}
		case c0 == c1:
			for r := min(r0, r1); r <= max(r0, r1); r++ {
				g.line(c0, r, '│')
			}
		default:
			g.line(c0, r0, '·')
			g.line(c1, r1, '·')
		}
	}
}

func (g *grid) line(c, r int, ch rune) {
	prev := g.get(c, r)
	if prev.kind == kindLine && prev.r != ch {
		ch = '┼'
	}
	g.set(c, r, ch, kindLine)
}

// box draws r with a border and a one-line label. Rectangles narrower or
// shorter than two cells are filled instead.
func (g *grid) box(rect geom.Rect, label string, runes boxRunes, kind cellKind) {
	c0, r0 := g.col(rect.Left), g.row(rect.Top)
	c1, r1 := g.col(rect.Right())-1, g.row(rect.Bottom())-1
	if c1 < c0 {
		c1 = c0
	}
	if r1 < r0 {
		r1 = r0
	}
	if c1-c0 < 1 || r1-r0 < 1 {
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				g.set(c, r, '█', kind)
			}
		}
		return
	}

	for c := c0; c <= c1; c++ {
		g.set(c, r0, runes.horizontal, kind)
		g.set(c, r1, runes.horizontal, kind)
	}
	for r := r0 + 1; r < r1; r++ {
		g.set(c0, r, runes.vertical, kind)
		g.set(c1, r, runes.vertical, kind)
		for c := c0 + 1; c < c1; c++ {
			g.set(c, r, ' ', kind)
		}
	}
	g.set(c0, r0, runes.topLeft, kind)
	g.set(c1, r0, runes.topRight, kind)
	g.set(c0, r1, runes.bottomLeft, kind)
	g.set(c1, r1, runes.bottomRight, kind)

	if r1-r0 < 2 {
		return
	}
	text := []rune(label)
	if room := c1 - c0 - 1; len(text) > room {
		text = text[:max(room, 0)]
	}
	mid := r0 + (r1-r0)/2
	for n, ch := range text {
		g.set(c0+1+n, mid, ch, kind)
	}
}

// render joins runs of equally styled cells.
func (g *grid) render(styles map[cellKind]lipgloss.Style) string {
	var sb strings.Builder
	for r, row := range g.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && row[c].kind == row[start].kind {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:c] {
				run.WriteRune(cl.r)
			}
			sb.WriteString(styles[row[start].kind].Render(run.String()))
			start = c
		}
	}
	return sb.String()
}

// drawScene rasterizes sc shifted by origin, the canvas position on screen.
func (g *grid) drawScene(sc layout.Scene, origin geom.Point, labelKey, armed string) {
	for _, c := range sc.Connectors {
		pts := make([]geom.Point, len(c.Points))
		for n, p := range c.Points {
			pts[n] = p.Add(origin)
		}
		g.polyline(pts)
	}
	for _, p := range sc.Blocks {
		kind := kindBlock
		if p.ID == armed {
			kind = kindArmed
		}
		g.box(p.Rect.Translate(origin), label(p, labelKey), solidBox, kind)
	}
}

func label(p layout.Placed, key string) string {
	if v, ok := p.Data[key].(string); ok && v != "" {
		return v
	}
	return p.ID
}
