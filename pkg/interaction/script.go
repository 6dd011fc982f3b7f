package interaction

import (
	"context"
	"fmt"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// EventType names a recorded input event.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventKeyDown     EventType = "keydown"
	EventKeyUp       EventType = "keyup"
)

// Event is one recorded input event. Target uses the [ParseTarget] syntax.
type Event struct {
	Type   EventType `json:"type" yaml:"type"`
	X      float64   `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64   `json:"y,omitempty" yaml:"y,omitempty"`
	Target string    `json:"target,omitempty" yaml:"target,omitempty"`
	Key    string    `json:"key,omitempty" yaml:"key,omitempty"`
}

// Script is a replayable session: an optional starting tree, the handle
// palette and the events to feed.
type Script struct {
	Tree    *block.Tree `json:"tree,omitempty" yaml:"tree,omitempty"`
	Anchor  *geom.Point `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Handles []Handle    `json:"handles,omitempty" yaml:"handles,omitempty"`
	Events  []Event     `json:"events" yaml:"events"`
}

// Dispatch feeds one event. Only pointer-up events produce a meaningful
// outcome; the others return an OpNone outcome.
func (i *Interaction) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	none := Outcome{Op: OpNone}
	switch ev.Type {
	case EventKeyDown:
		i.KeyDown(ev.Key)
		return none, nil
	case EventKeyUp:
		i.KeyUp(ev.Key)
		return none, nil
	}

	target, err := ParseTarget(ev.Target)
	if err != nil {
		return none, err
	}
	pe := PointerEvent{X: ev.X, Y: ev.Y, Target: target}
	switch ev.Type {
	case EventPointerDown:
		return none, i.PointerDown(ctx, pe)
	case EventPointerMove:
		return none, i.PointerMove(ctx, pe)
	case EventPointerUp:
		return i.PointerUp(ctx, pe)
	default:
		return none, fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// Run imports the script's tree (if any), registers its handles and
// dispatches every event in order. It returns the outcome of every
// pointer-up and stops at the first error.
func (i *Interaction) Run(ctx context.Context, s Script) ([]Outcome, error) {
	if s.Tree != nil {
		if _, err := i.Import(ctx, s.Tree, s.Anchor); err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
	}
	for _, h := range s.Handles {
		if err := i.RegisterHandle(h); err != nil {
			return nil, fmt.Errorf("handle %q: %w", h.ID, err)
		}
	}

	var outcomes []Outcome
	for n, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := i.Dispatch(ctx, ev)
		if err != nil {
			return outcomes, fmt.Errorf("event %d (%s): %w", n, ev.Type, err)
		}
		if ev.Type == EventPointerUp {
			outcomes = append(outcomes, out)
		}
	}
	return outcomes, nil
}
