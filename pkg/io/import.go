package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/interaction"
)

// ReadTree decodes a nested or flat tree document from r.
//
// A flat document must describe exactly one tree; zero or several roots
// fail with INVALID_STATE. A nested document must have a root id only when
// the caller relies on stable ids; missing ids are assigned on import.
// ReadTree does not close r.
func ReadTree(r io.Reader, f Format) (*block.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if isList(data, f) {
		var records []block.Record
		if err := decode(data, f, &records); err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, errors.InvalidState("document contains no blocks")
		}
		blocks, err := block.FromRecords(records)
		if err != nil {
			return nil, err
		}
		return block.ToTree(blocks)
	}

	var t block.Tree
	if err := decode(data, f, &t); err != nil {
		return nil, err
	}
	if t.ID == "" && t.Data == nil && len(t.Children) == 0 {
		return nil, errors.InvalidState("document contains no blocks")
	}
	normalize(&t)
	return &t, nil
}

// ImportTree reads a tree file, picking the format from its extension.
func ImportTree(path string) (*block.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f, FormatFromPath(path))
}

// ReadScript decodes an event script from r.
func ReadScript(r io.Reader, f Format) (interaction.Script, error) {
	var s interaction.Script
	data, err := io.ReadAll(r)
	if err != nil {
		return s, fmt.Errorf("read: %w", err)
	}
	if err := decode(data, f, &s); err != nil {
		return s, err
	}
	if s.Tree != nil {
		normalize(s.Tree)
	}
	return s, nil
}

// ImportScript reads an event script file.
func ImportScript(path string) (interaction.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return interaction.Script{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadScript(f, FormatFromPath(path))
}

// normalize replaces absent child lists with empty ones so decoded trees
// compare equal to exported ones.
func normalize(t *block.Tree) {
	t.Walk(func(n *block.Tree, _ int) bool {
		if n.Children == nil {
			n.Children = []*block.Tree{}
		}
		return true
	})
}
