package io

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockflow/pkg/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use json or yaml)", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func decode(data []byte, f Format, v any) error {
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func encode(w io.Writer, f Format, v any) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// isList reports whether a document's top-level value is a list.
func isList(data []byte, f Format) bool {
	s := strings.TrimSpace(string(data))
	if f == FormatYAML {
		s = strings.TrimSpace(strings.TrimPrefix(s, "---"))
		for strings.HasPrefix(s, "#") {
			_, rest, _ := strings.Cut(s, "\n")
			s = strings.TrimSpace(rest)
		}
		return strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "-\n") || strings.HasPrefix(s, "[")
	}
	return strings.HasPrefix(s, "[")
}
