package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/layout"
)

// WriteTree encodes the nested form of t. A nil tree encodes as null.
func WriteTree(w io.Writer, t *block.Tree, f Format) error {
	return encode(w, f, t)
}

// WriteFlat encodes records as a flat list.
func WriteFlat(w io.Writer, records []block.Record, f Format) error {
	if records == nil {
		records = []block.Record{}
	}
	return encode(w, f, records)
}

// WriteScene encodes a laid-out scene.
func WriteScene(w io.Writer, sc layout.Scene, f Format) error {
	return encode(w, f, sc)
}

// ExportTree writes t to path, picking the format from the extension.
func ExportTree(t *block.Tree, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteTree(w, t, FormatFromPath(path)) })
}

// ExportFlat writes records to path, picking the format from the extension.
func ExportFlat(records []block.Record, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteFlat(w, records, FormatFromPath(path)) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
