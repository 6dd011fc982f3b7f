package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/observability"
)

// =============================================================================
// Headless Interaction
// =============================================================================

// NewHeadless creates an interaction with static visuals and no surface, the
// same state machine the interactive hosts drive. New blocks get sequential
// ids ("b1", "b2", ...) so script runs are reproducible.
func NewHeadless(opts Options) (*interaction.Interaction, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	return interaction.New(opts.InteractionConfig(),
		interaction.WithRenderer(bridge.Static{}),
		interaction.WithIDGenerator(block.NewSequence("b")),
		interaction.WithLogger(opts.Logger),
	)
}

// Simulate imports tree into a fresh headless interaction and replays the
// script events of opts, if any. The script's own tree is ignored in favour
// of tree; its anchor applies when opts has none.
func Simulate(ctx context.Context, tree *block.Tree, opts Options) (*interaction.Interaction, []interaction.Outcome, error) {
	in, err := NewHeadless(opts)
	if err != nil {
		return nil, nil, err
	}
	if tree == nil && opts.Script == nil {
		return nil, nil, errors.InvalidArgument("nothing to lay out: no tree and no script")
	}
	anchor := opts.Anchor
	if anchor == nil && opts.Script != nil {
		anchor = opts.Script.Anchor
	}
	if tree != nil {
		if _, err := in.Import(ctx, tree, anchor); err != nil {
			return nil, nil, fmt.Errorf("import: %w", err)
		}
	}
	if opts.Script == nil {
		return in, nil, nil
	}

	script := *opts.Script
	script.Tree = nil
	outcomes, err := in.Run(ctx, script)
	if err != nil {
		return nil, outcomes, err
	}
	return in, outcomes, nil
}

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeScene lays tree out headlessly and returns the scene together with
// the final tree and any script outcomes.
func ComputeScene(ctx context.Context, tree *block.Tree, opts Options) (layout.Scene, *block.Tree, []interaction.Outcome, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Scene{}, nil, nil, err
	}
	orientation := string(opts.Layout.Orientation)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, orientation, tree.Size())
	start := time.Now()

	sc, final, outcomes, err := computeScene(ctx, tree, opts)
	hooks.OnLayoutComplete(ctx, orientation, time.Since(start), err)
	return sc, final, outcomes, err
}

func computeScene(ctx context.Context, tree *block.Tree, opts Options) (layout.Scene, *block.Tree, []interaction.Outcome, error) {
	in, outcomes, err := Simulate(ctx, tree, opts)
	if err != nil {
		return layout.Scene{}, nil, outcomes, err
	}
	defer in.Destroy()

	final, err := in.Export()
	if err != nil {
		return layout.Scene{}, nil, outcomes, err
	}
	return in.Scene(), final, outcomes, nil
}
