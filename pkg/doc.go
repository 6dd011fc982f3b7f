// Package pkg provides the core libraries for blockflow, an interactive
// editor for trees of blocks.
//
// # Overview
//
// A blockflow canvas holds exactly one tree. Blocks are created by dragging a
// palette handle onto the canvas or onto an existing block, moved or copied
// by dragging one block onto another, and laid out as a tidy tree joined by
// elbow connectors. The pkg directory is organized into four areas:
//
//  1. Core model: [block], [geom], [layout], [errors]
//  2. Interaction: [interaction] and its host boundary [bridge]
//  3. Headless processing: [pipeline], [render], [io], [cache], [httputil]
//  4. Persistence and instrumentation: [store], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow through an interactive host:
//
//	pointer / key events or API calls
//	         ↓
//	    [interaction] package (drag/attach state machine, validation hook)
//	         ↓
//	    [block] package (store mutation: add, move, copy, remove)
//	         ↓
//	    [bridge] package (render new blocks concurrently)
//	         ↓
//	    [layout] package (tidy tree positions + connectors)
//	         ↓
//	    host surface (SVG, WebSocket clients, terminal)
//
// # Quick Start
//
// Build a tree programmatically and render it headlessly:
//
//	in, _ := interaction.New(interaction.DefaultConfig(),
//	    interaction.WithRenderer(bridge.Static{}))
//	root, _ := in.AddRoot(ctx, block.Data{"label": "start"})
//	in.AddChild(ctx, root.Created[0], block.Data{"label": "next"})
//
//	svg := svg.RenderSVG(in.Scene(), svg.WithLabelKey("label"))
//
// # Main Packages
//
// ## Core Model
//
// [block] - Blocks, the ordered store, nested trees and flat records, id
// generation and payload cloning.
//
// [geom] - Points and rectangles, containment and overlap tests.
//
// [layout] - Tidy tree layout in top-down or left-right orientation, anchored
// at the root block, plus elbow connector paths.
//
// [errors] - Structured error codes shared by every package and host.
//
// ## Interaction
//
// [interaction] - The Interaction facade: programmatic mutations, pointer
// gestures, zoom, pan, import/export and event script replay.
//
// [bridge] - The boundary to the host: renderers, surfaces and hooks, with a
// headless renderer and a recording surface.
//
// ## Headless Processing
//
// [pipeline] - Load → layout → render runner with caching, used by the CLI.
//
// [render] - Output formats and SVG to PDF/PNG conversion; [render/svg]
// draws scenes directly and [render/nodelink] goes through Graphviz.
//
// [io] - Tree, flat record and script documents in JSON or YAML.
//
// [httputil] - Fetching remote tree documents with retries.
//
// [cache] - File, Redis and null caches for scenes and artifacts.
//
// ## Persistence
//
// [store] - Named snapshots in a directory, SQLite or MongoDB.
//
// [observability] - Optional hooks for metrics and tracing.
package pkg
