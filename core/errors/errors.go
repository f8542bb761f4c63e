// Package errors provides standardized error types and helpers for the treebank codebase.
//
// Errors fall into four families, each unwrapping to a sentinel:
//   - configuration errors (ErrConfig): an unrecognized option value
//   - format errors (ErrFormat): malformed brackets, columns or block delimiters
//   - semantic errors (ErrSemantic): structurally impossible input
//   - placement errors (ErrPlacement, ErrOutOfRange): invalid tree mutations
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrConfig indicates an unrecognized or invalid configuration value
	ErrConfig = errors.New("invalid configuration")
	// ErrFormat indicates malformed treebank input
	ErrFormat = errors.New("malformed input")
	// ErrSemantic indicates input that is well-formed but inconsistent
	ErrSemantic = errors.New("inconsistent input")
	// ErrOutOfRange indicates an index or tree position outside the tree
	ErrOutOfRange = errors.New("index out of range")
	// ErrPlacement indicates a child that cannot be attached where requested
	ErrPlacement = errors.New("invalid placement")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "corpus file", "head rules")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotFound, e.Err}
	}
	return []error{ErrNotFound}
}

// ConfigError represents an option value outside its legal set.
type ConfigError struct {
	Option  string   // Option name (e.g., "punct", "functions")
	Value   string   // Value that was rejected
	Allowed []string // Legal values, if the set is closed
	Err     error    // Underlying error, if any
}

func (e *ConfigError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid %s: expected one of %s, got %q",
			e.Option, strings.Join(e.Allowed, ", "), e.Value)
	}
	return fmt.Sprintf("invalid %s: %q", e.Option, e.Value)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfig, e.Err}
	}
	return []error{ErrConfig}
}

// TokenError reports a bracket tokenization failure: the token that was seen
// where something else was expected, its byte offset and a context snippet.
type TokenError struct {
	Expected string // What the parser expected (e.g., "(", ")", "end-of-string")
	Token    string // Token actually found
	Offset   int    // Byte offset of Token in Input
	Input    string // The complete input being parsed
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("expected %q but got %q at index %d\n%s",
		e.Expected, e.Token, e.Offset, e.Context())
}

// Context renders a one-line excerpt of the input around the offending token
// followed by a caret line pointing at it.
func (e *TokenError) Context() string {
	s := strings.NewReplacer("\n", " ", "\t", " ", "\r", " ").Replace(e.Input)
	offset := e.Offset
	if len(s) > e.Offset+10 {
		s = s[:e.Offset+10] + "..."
	}
	if e.Offset > 10 {
		s = "..." + s[e.Offset-10:]
		offset = 13
	}
	return fmt.Sprintf("    %q\n    %s^", s, strings.Repeat(" ", offset+1))
}

func (e *TokenError) Unwrap() error {
	return ErrFormat
}

// FormatError represents malformed input in one of the treebank formats.
type FormatError struct {
	Format   string // Format being read (e.g., "export", "bracket")
	Block    string // Block or sentence identifier, if known
	Fragment string // Offending fragment of the input, if available
	Message  string // Error details
	Err      error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed ")
	sb.WriteString(e.Format)
	if e.Block != "" {
		sb.WriteString(" block ")
		sb.WriteString(e.Block)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Fragment != "" {
		fmt.Fprintf(&sb, "\nwhile parsing: %q", e.Fragment)
	}
	return sb.String()
}

func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}

// SemanticError represents input that parses but cannot form a valid tree,
// such as a node with two primary parents.
type SemanticError struct {
	Message string
	Err     error
}

func (e *SemanticError) Error() string {
	return e.Message
}

func (e *SemanticError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSemantic, e.Err}
	}
	return []error{ErrSemantic}
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnsupported, e.Err}
	}
	return []error{ErrUnsupported}
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewConfig creates a ConfigError
func NewConfig(option, value string, allowed ...string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Allowed: allowed,
	}
}

// NewFormat creates a FormatError
func NewFormat(format, block, message string) *FormatError {
	return &FormatError{
		Format:  format,
		Block:   block,
		Message: message,
	}
}

// NewSemantic creates a SemanticError with a formatted message
func NewSemantic(format string, args ...interface{}) *SemanticError {
	return &SemanticError{Message: fmt.Sprintf(format, args...)}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// OutOfRange returns an error wrapping ErrOutOfRange with formatted context.
func OutOfRange(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrOutOfRange)
}

// Placement returns an error wrapping ErrPlacement with formatted context.
func Placement(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPlacement)
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
