package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateID validates a block identifier received from an outer surface
// (HTTP, MCP, event scripts). Identifiers are opaque, but they must be
// printable and bounded:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "block id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "block id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "block id contains invalid control characters")
		}
	}

	return nil
}

// snapshotNameRegex matches names usable as snapshot keys across all store backends.
var snapshotNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName validates a snapshot name for safety.
// Names become file names in the file store, so they must be simple
// basenames without path components or traversal sequences.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "snapshot name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "snapshot name too long (max 128 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "snapshot name cannot contain path traversal sequences (..)")
	}

	if !snapshotNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid snapshot name: %q", name)
	}

	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
