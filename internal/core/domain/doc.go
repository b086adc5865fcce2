// Package domain defines the core business entities for docharvest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Annotation: One harvested document and everything attached to it
//   - FieldNode: A node of the extracted content tree
//   - Hook: A queue extension with dataset-mapping configurations
//   - Collection: The id-keyed result set of a harvest
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
