// Package bridge is the narrow boundary between the block core and the host
// that draws it.
//
// The core never draws anything itself. It asks a [Renderer] to mount one
// visual per block, tells a [Surface] which connectors, drag proxy and armed
// highlight to show, and notifies the host through [Hooks] when blocks are
// removed, the tree changes or the zoom changes.
//
// # Rendering
//
// [Bridge.RenderBatch] mounts every block of one structural operation
// concurrently and returns only once the whole batch has resolved. A batch
// either succeeds as a whole or fails as a whole: handles mounted before the
// failure are released again and no block is given a handle.
//
// # Hook failures
//
// Hooks return errors instead of panicking. A panic inside a host callback is
// recovered and reported as an error with code HOST_HOOK, like any returned
// error, so a faulty host can never leave the store half-mutated.
//
// # Headless hosts
//
// [Static] renders fixed-size placeholder handles and [Recorder] records
// surface calls. Together they drive the CLI, the HTTP and MCP hosts and the
// tests without any real UI.
package bridge
