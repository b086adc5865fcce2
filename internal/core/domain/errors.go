package domain

import "errors"

// Domain errors represent harvest business-rule failures.
// Network and HTTP failures live in the client package.
var (
	// ErrInvalidConfiguration indicates a bad credential or base URL.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSchemaMismatch indicates a referenced schema id has no match
	// in a document's field tree, or a hook carries no configurations.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupportedShape indicates a plain placeholder resolved to
	// more than one field. Plain placeholders assume a single-valued
	// mapping; multivalue fields are not silently collapsed.
	ErrUnsupportedShape = errors.New("unsupported shape")

	// ErrHookExists indicates a hook id was registered twice.
	ErrHookExists = errors.New("hook already exists")

	// ErrHookNotFound indicates a referenced hook id is unknown.
	ErrHookNotFound = errors.New("hook not found")
)
