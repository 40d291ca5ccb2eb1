// Package domain defines the core business entities for refrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrieved passage with typed provenance metadata
//   - ReferenceSet: The table/picture anchors a chunk points at
//   - SideTableRow: A rendered table or picture keyed by (source, ref)
//   - ResolvedEvidence: The artifacts referenced by a retrieval batch
//   - AnswerResult: The answer record or a classified error
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
