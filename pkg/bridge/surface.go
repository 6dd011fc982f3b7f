package bridge

import (
	"sync"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
)

// ProxyKind tells what a drag proxy stands for.
type ProxyKind int

const (
	// ProxyNewNode follows the pointer while a handle is dragged.
	ProxyNewNode ProxyKind = iota
	// ProxySubtree carries clones of an existing subtree.
	ProxySubtree
)

func (k ProxyKind) String() string {
	if k == ProxySubtree {
		return "subtree"
	}
	return "new-node"
}

// Proxy is the floating visual shown during a drag.
type Proxy struct {
	Kind ProxyKind
	// Source is the handle id for new nodes, the dragged block id otherwise.
	Source string
	// Data is the payload a new node would be created with.
	Data block.Data
	// Rect is the dragged element's current canvas rectangle; hit-testing
	// uses it.
	Rect geom.Rect
	// Offset is the pointer position relative to Rect's origin.
	Offset geom.Point
	// Blocks and Connectors are the subtree clones at their current drag
	// position. Empty for new nodes.
	Blocks     []layout.Placed
	Connectors []layout.Connector
	// Copy is set while the copy modifier is held.
	Copy bool
}

// Surface draws everything that is not a block visual.
type Surface interface {
	// DrawConnectors replaces all drawn connectors.
	DrawConnectors(cs []layout.Connector)
	// ShowProxy starts showing a drag proxy.
	ShowProxy(p Proxy)
	// MoveProxy updates the proxy's position or copy indicator.
	MoveProxy(p Proxy)
	// RemoveProxy hides the proxy.
	RemoveProxy()
	// Arm highlights the current attach target, replacing any previous one.
	Arm(id string)
	// Disarm clears the highlight.
	Disarm()
}

// NopSurface draws nothing.
type NopSurface struct{}

func (NopSurface) DrawConnectors([]layout.Connector) {}
func (NopSurface) ShowProxy(Proxy)                   {}
func (NopSurface) MoveProxy(Proxy)                   {}
func (NopSurface) RemoveProxy()                      {}
func (NopSurface) Arm(string)                        {}
func (NopSurface) Disarm()                           {}

// Recorder is a Surface that remembers the latest state and a log of calls.
// It is safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	connectors []layout.Connector
	proxy      *Proxy
	armed      string
	calls      []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) DrawConnectors(cs []layout.Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors = append([]layout.Connector(nil), cs...)
	r.calls = append(r.calls, "connectors")
}

func (r *Recorder) ShowProxy(p Proxy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxy = &p
	r.calls = append(r.calls, "show "+p.Kind.String())
}

func (r *Recorder) MoveProxy(p Proxy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxy = &p
	r.calls = append(r.calls, "move")
}

func (r *Recorder) RemoveProxy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxy = nil
	r.calls = append(r.calls, "remove")
}

func (r *Recorder) Arm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = id
	r.calls = append(r.calls, "arm "+id)
}

func (r *Recorder) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = ""
	r.calls = append(r.calls, "disarm")
}

// Connectors returns the connectors drawn last.
func (r *Recorder) Connectors() []layout.Connector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]layout.Connector(nil), r.connectors...)
}

// Proxy returns the visible proxy, if any.
func (r *Recorder) Proxy() (Proxy, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proxy == nil {
		return Proxy{}, false
	}
	return *r.proxy, true
}

// Armed returns the highlighted block id, or "" when none is.
func (r *Recorder) Armed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// Calls returns the call log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
