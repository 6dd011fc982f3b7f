// Package block provides the in-memory block tree managed by blockflow.
//
// A [Store] keeps every [Block] in a flat, ordered list where each block
// points at its parent through ParentID. Exactly one block (the root) has
// no parent when the store is non-empty, there are no cycles, and ids are
// unique at all times, including right after [Store.CopySubtree].
//
// # Core Types
//
//   - [Block]: one node, carrying an opaque host payload ([Data]) and geometry
//   - [Store]: the authoritative list plus tree-shaped queries and mutations
//   - [Tree]: the nested import/export shape {id, data, children}
//   - [Record]: the flat export shape {id, parentId, data}
//
// # Conversions
//
// [ToTree] and [FromTree] convert between the flat list and the nested shape.
// Both preserve child order, so ToTree(FromTree(t)) reproduces t:
//
//	blocks, err := block.FromTree(tree, block.UUIDGenerator{})
//	if err != nil {
//	    return err
//	}
//	back, err := block.ToTree(blocks)
//
// # Identifiers
//
// Ids come from a per-store [IDGenerator]. The default [UUIDGenerator] draws
// random UUIDs, so independent stores never share a counter. [Sequence]
// produces readable, deterministic ids for scripted runs and tests.
//
// # Payload Copies
//
// Copying a subtree deep-clones every payload through the store's
// [CloneFunc]. The default is [DeepClone]; hosts whose payloads carry
// values that cannot be reflected over supply their own.
//
// # Geometry
//
// Position and Size are written by the layout engine and are stale right
// after any structural mutation until the next layout run completes. The
// store itself never reads them.
package block
