// Package domain defines the core business entities for Tala knowledge retrieval.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file and its ingestion record
//   - Chunk: A word window of a document's extracted text
//   - VectorPoint: One stored (vector, payload) pair
//   - SearchResult: A ranked passage returned for a query
//   - Folder: A user-defined grouping of documents
//
// It also owns the collection naming policy, which maps tenants to
// vector store collections.
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
