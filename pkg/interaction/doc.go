// Package interaction owns a block tree on a canvas and turns pointer
// gestures into structural mutations.
//
// An [Interaction] holds the block store, the layout engine and the render
// bridge. Hosts feed it abstract pointer and key events; it decides between
// four states:
//
//	Idle ──down on handle──▶ DraggingNewNode ─────────┐
//	     ──down on block───▶ DraggingExistingSubtree ─┼─up──▶ Idle
//	     ──down on canvas──▶ PanningCanvas ───────────┘
//
// Dropping a handle creates a block (the root when the canvas is empty,
// otherwise a child of the armed target). Dropping a block relinks it to
// the target, or copies its whole subtree there while the copy key is
// held. Panning translates every block without a full layout.
//
// # Commits
//
// Every structural mutation, whether it comes from a gesture or from the
// programmatic API ([Interaction.AddChild], [Interaction.RemoveNode], ...),
// runs as one unit under the interaction's lock:
//
//  1. apply the mutation to a copy of the store
//  2. ask the host's ShouldUpdate hook; a decline drops the copy silently
//  3. render the new blocks as one concurrent batch
//  4. swap the copy in, lay out, notify OnUpdate
//
// A failure in steps 1-3 leaves the store exactly as it was.
//
// # Coordinates
//
// Pointer events and handle rectangles are in screen coordinates. Blocks
// live in canvas coordinates; the canvas origin is subtracted on entry.
package interaction
