// Package tui hosts an interaction in the terminal. Mouse presses, drags
// and releases become pointer events, so blocks are created by dragging a
// palette entry onto the canvas and moved or copied by dragging them onto
// another block.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
)

// Default cell size in canvas pixels.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

const (
	zoomStep = 1.25
	panCells = 4
	// the palette occupies the first row, the status line the last
	chromeRows = 2
)

// DefaultPalette is offered when no palette is configured.
var DefaultPalette = []string{"step", "decision", "note"}

// Options configures a Model.
type Options struct {
	// Palette lists the labels of the draggable palette entries.
	Palette []string
	// LabelKey selects the payload field shown inside blocks.
	LabelKey string
	// CellWidth and CellHeight give the pixel size of one terminal cell.
	CellWidth, CellHeight float64
}

// Model is the bubbletea model for one interaction.
type Model struct {
	in      *interaction.Interaction
	surface *bridge.Recorder
	opts    Options

	width, height int
	copyHeld      bool
	altHeld       bool // Alt as last reported by a mouse event
	status        string
	err           error
	quitting      bool
}

// New creates a model for in. surface must be the Surface in was created
// with; the model reads the drag proxy and armed target from it.
func New(in *interaction.Interaction, surface *bridge.Recorder, opts Options) (*Model, error) {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	if opts.LabelKey == "" {
		opts.LabelKey = "label"
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = DefaultCellHeight
	}
	m := &Model{in: in, surface: surface, opts: opts, width: 80, height: 24}
	if err := m.registerPalette(); err != nil {
		return nil, err
	}
	return m, nil
}

// Run starts a full-screen program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// registerPalette registers one handle per palette entry, laid out left to
// right on the first row.
func (m *Model) registerPalette() error {
	class := m.in.Config().HandleClass
	col := 0
	for _, name := range m.opts.Palette {
		text := paletteText(name)
		h := interaction.Handle{
			ID:      "palette-" + name,
			Classes: []string{class},
			Rect: geom.Rect{
				Left:   float64(col) * m.opts.CellWidth,
				Top:    0,
				Width:  float64(len([]rune(text))) * m.opts.CellWidth,
				Height: m.opts.CellHeight,
			},
			Data: block.Data{m.opts.LabelKey: name},
		}
		if err := m.in.RegisterHandle(h); err != nil {
			return fmt.Errorf("register palette entry %q: %w", name, err)
		}
		col += len([]rune(text)) + 1
	}
	return nil
}

func paletteText(name string) string { return "[+ " + name + "]" }

// =============================================================================
// bubbletea
// =============================================================================

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()
	dx, dy := m.opts.CellWidth*panCells, m.opts.CellHeight*panCells/2
	var err error
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "c":
		m.setCopy(!m.copyHeld)
	case "+", "=":
		err = m.in.SetZoom(ctx, m.in.Zoom()*zoomStep)
	case "-":
		err = m.in.SetZoom(ctx, m.in.Zoom()/zoomStep)
	case "left", "h":
		err = m.in.Pan(-dx, 0)
	case "right", "l":
		err = m.in.Pan(dx, 0)
	case "up", "k":
		err = m.in.Pan(0, -dy)
	case "down", "j":
		err = m.in.Pan(0, dy)
	case "x":
		err = m.in.Clear()
		m.status = "cleared"
	}
	m.err = err
	return nil
}

// handleMouse translates left-button gestures into pointer events at the
// center of the cell under the pointer. The Alt modifier reported with the
// event drives the copy key when it changes, so the "c" toggle survives
// plain mouse events.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionPress && msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Alt != m.altHeld {
		m.altHeld = msg.Alt
		m.setCopy(msg.Alt)
	}
	ctx := context.Background()
	p := m.screenPoint(msg.X, msg.Y)
	pe := interaction.PointerEvent{X: p.X, Y: p.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		m.err = m.in.PointerDown(ctx, pe)
	case tea.MouseActionMotion:
		if m.in.State() == interaction.Idle {
			return
		}
		m.err = m.in.PointerMove(ctx, pe)
	case tea.MouseActionRelease:
		out, err := m.in.PointerUp(ctx, pe)
		m.err = err
		if err == nil {
			m.status = describe(out)
		}
	}
}

func (m *Model) setCopy(held bool) {
	key := m.in.Config().CopyKey
	if held {
		m.in.KeyDown(key)
	} else {
		m.in.KeyUp(key)
	}
	m.copyHeld = held
}

func (m *Model) screenPoint(col, row int) geom.Point {
	return geom.Point{
		X: (float64(col) + 0.5) * m.opts.CellWidth,
		Y: (float64(row) + 0.5) * m.opts.CellHeight,
	}
}

func describe(out interaction.Outcome) string {
	switch {
	case out.Declined:
		return fmt.Sprintf("%s declined", out.Op)
	case out.Committed && out.Target != "":
		return fmt.Sprintf("%s → %s", out.Op, out.Target)
	case out.Committed:
		return string(out.Op)
	case out.Op == interaction.OpNone:
		return "dropped outside any block"
	default:
		return string(out.Op)
	}
}

// =============================================================================
// View
// =============================================================================

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.paletteLine())
	b.WriteByte('\n')
	b.WriteString(m.canvas())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) paletteLine() string {
	parts := []string{}
	for _, name := range m.opts.Palette {
		parts = append(parts, styleHandle.Render(paletteText(name)))
	}
	line := strings.Join(parts, " ")
	return line + "  " + styleTitle.Render("blockflow")
}

// canvas draws the rows between the palette and the status line. The grid
// covers the whole screen so pixel positions map to the same cells mouse
// events report; the palette row is dropped before printing.
func (m *Model) canvas() string {
	rows := max(m.height-chromeRows, 1)
	g := newGrid(m.width, rows+1, m.opts.CellWidth, m.opts.CellHeight)

	cfg := m.in.Config()
	origin := cfg.Canvas.Origin()
	armed := m.surface.Armed()
	g.drawScene(m.in.Scene(), origin, m.opts.LabelKey, armed)

	if p, ok := m.surface.Proxy(); ok {
		g.drawProxy(p, origin, m.opts.LabelKey)
	}

	g.cells = g.cells[1:]
	g.rows--
	return g.render(map[cellKind]lipgloss.Style{
		kindBlank: styleBlank,
		kindLine:  styleLine,
		kindBlock: styleBlock,
		kindArmed: armedStyle(cfg.HighlightColor),
		kindProxy: styleProxy,
	})
}

func (g *grid) drawProxy(p bridge.Proxy, origin geom.Point, labelKey string) {
	if p.Kind == bridge.ProxySubtree {
		for _, c := range p.Connectors {
			pts := make([]geom.Point, len(c.Points))
			for n, q := range c.Points {
				pts[n] = q.Add(origin)
			}
			g.polyline(pts)
		}
		for _, b := range p.Blocks {
			g.box(b.Rect.Translate(origin), label(b, labelKey), doubleBox, kindProxy)
		}
		return
	}
	text, _ := p.Data[labelKey].(string)
	g.box(p.Rect.Translate(origin), text, doubleBox, kindProxy)
}

func (m *Model) statusLine() string {
	copyState := "off"
	if m.copyHeld {
		copyState = "on"
	}
	line := fmt.Sprintf("%s · %d blocks · zoom %.2f · copy %s",
		m.in.State(), m.in.Len(), m.in.Zoom(), copyState)
	if m.status != "" {
		line += " · " + m.status
	}
	out := styleStatus.Render(line)
	if m.err != nil {
		out += "  " + styleError.Render(errors.UserMessage(m.err))
	}
	return out
}
