// Package io reads and writes block trees, laid-out scenes and event
// scripts as JSON or YAML.
//
// # Tree Formats
//
// A tree document is either the nested form, with the root implied by being
// the top-level object:
//
//	{
//	  "id": "start",
//	  "data": {"label": "Start"},
//	  "children": [
//	    {"id": "check", "data": {"label": "Check"}, "children": []}
//	  ]
//	}
//
// or the flat form, a list of records whose root has an empty parentId:
//
//	[
//	  {"id": "start", "parentId": "", "data": {"label": "Start"}},
//	  {"id": "check", "parentId": "start", "data": {"label": "Check"}}
//	]
//
// [ReadTree] accepts both and always returns the nested form. The same two
// shapes are accepted in YAML. Both forms round-trip losslessly.
//
// # Formats
//
// [FormatFromPath] picks YAML for .yaml and .yml files and JSON otherwise.
// JSON numbers decode as float64 and YAML integers as int; payloads are
// otherwise passed through untouched.
//
// # Import
//
// Use [ImportTree] to read a tree from a file path, or [ReadTree] to read
// from any io.Reader:
//
//	t, err := io.ImportTree("flow.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// [WriteTree], [WriteFlat] and [WriteScene] encode to any io.Writer;
// [ExportTree] and [ExportFlat] write files.
package io
