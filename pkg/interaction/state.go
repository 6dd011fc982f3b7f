package interaction

import (
	"fmt"
	"strings"
)

// State is the gesture the interaction is currently tracking.
type State int

const (
	Idle State = iota
	DraggingNewNode
	DraggingExistingSubtree
	PanningCanvas
)

var stateNames = [...]string{"idle", "dragging-new-node", "dragging-existing-subtree", "panning-canvas"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Op names a structural operation.
type Op string

const (
	OpNone          Op = "none"
	OpAddRoot       Op = "add-root"
	OpAddChild      Op = "add-child"
	OpMove          Op = "move"
	OpCopy          Op = "copy"
	OpRemoveNode    Op = "remove-node"
	OpRemoveSubtree Op = "remove-subtree"
	OpImport        Op = "import"
	OpPan           Op = "pan"
)

// Outcome reports what a gesture or an API call did to the store.
type Outcome struct {
	Op        Op       `json:"op" yaml:"op"`
	Committed bool     `json:"committed" yaml:"committed"`
	Declined  bool     `json:"declined,omitempty" yaml:"declined,omitempty"`
	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	Created   []string `json:"created,omitempty" yaml:"created,omitempty"`
	Removed   []string `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// TargetKind classifies what a pointer-down landed on.
type TargetKind int

const (
	// TargetAuto resolves the target by hit-testing the event coordinates.
	TargetAuto TargetKind = iota
	TargetHandle
	TargetBlock
	TargetCanvas
)

// Target is an explicit pointer target. Hosts that already know what is
// under the pointer (a DOM event target, a TUI cell) set it; others leave
// it zero.
type Target struct {
	Kind TargetKind
	ID   string
}

// ParseTarget parses "handle:<id>", "block:<id>", "canvas" or "" (auto).
func ParseTarget(s string) (Target, error) {
	switch {
	case s == "":
		return Target{}, nil
	case s == "canvas":
		return Target{Kind: TargetCanvas}, nil
	case strings.HasPrefix(s, "handle:"):
		return Target{Kind: TargetHandle, ID: strings.TrimPrefix(s, "handle:")}, nil
	case strings.HasPrefix(s, "block:"):
		return Target{Kind: TargetBlock, ID: strings.TrimPrefix(s, "block:")}, nil
	default:
		return Target{}, fmt.Errorf("unknown pointer target %q", s)
	}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetHandle:
		return "handle:" + t.ID
	case TargetBlock:
		return "block:" + t.ID
	case TargetCanvas:
		return "canvas"
	default:
		return ""
	}
}

// PointerEvent is an abstract pointer-down, -move or -up in screen
// coordinates.
type PointerEvent struct {
	X, Y   float64
	Target Target
}
