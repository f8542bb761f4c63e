// Package validation checks names that come from corpus content, such as
// sentence ids, before they are used as file or archive member names.
package validation

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxNameLength bounds a single path element.
const MaxNameLength = 255

// Validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidName      = errors.New("invalid name")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidCharacter = errors.New("invalid character in name")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// ValidateName checks one path element: no separators, no control
// characters, not "." or "..".
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case len(name) > MaxNameLength:
		return ErrNameTooLong
	case name == "." || name == "..":
		return fmt.Errorf("%w: reserved name %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("%w: path separator in %q", ErrInvalidName, name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character in %q", ErrInvalidCharacter, name)
		}
	}
	return nil
}

// MemberPath turns a sentence id such as "wr-p-p-i/1" into a relative,
// slash-separated member name with the given extension. Ids that would
// leave the output directory are rejected.
func MemberPath(id, ext string) (string, error) {
	if id == "" {
		return "", ErrEmptyName
	}
	id = strings.ReplaceAll(id, "\\", "/")
	if strings.HasPrefix(id, "/") {
		return "", fmt.Errorf("%w: absolute id %q", ErrPathTraversal, id)
	}
	for _, elem := range strings.Split(id, "/") {
		if elem == ".." {
			return "", fmt.Errorf("%w: %q", ErrPathTraversal, id)
		}
		if elem == "" || elem == "." {
			continue
		}
		if err := ValidateName(elem); err != nil {
			return "", err
		}
	}
	clean := path.Clean(id)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, id)
	}
	return clean + ext, nil
}

// SanitizePath joins a member name onto baseDir and verifies the result
// stays inside it.
func SanitizePath(baseDir, member string) (string, error) {
	if member == "" {
		return "", ErrEmptyName
	}
	full := filepath.Join(baseDir, filepath.FromSlash(member))
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, member)
	}
	return full, nil
}
