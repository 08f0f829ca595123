package mcp

import (
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers knowledge base queries.
	Retrieval driving.RetrievalService

	// Ingestion exposes document records for status checks.
	Ingestion driving.IngestionService

	// Folder lists folders.
	Folder driving.FolderService

	// Collection lists vector collections.
	Collection driving.CollectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// The other ports only gate individual tools and resources.
	return nil
}
