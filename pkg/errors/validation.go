package errors

import (
	"strings"
	"unicode"
)

// maxExpressionLength bounds the text accepted for a single node expression.
const maxExpressionLength = 4096

// ValidatePath validates a module path relative to a module root.
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

// ValidateExpression checks the text of a node expression before it is
// handed to the parser: it must be non-blank, fit on one line and stay
// under a sane length.
func ValidateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return New(ErrCodeInvalidInput, "expression cannot be empty")
	}
	if len(expr) > maxExpressionLength {
		return New(ErrCodeInvalidInput, "expression too long (max %d characters)", maxExpressionLength)
	}
	if strings.ContainsAny(expr, "\n\r") {
		return New(ErrCodeInvalidInput, "expression must be a single line")
	}
	return nil
}
