package api

import (
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

// Ports aggregates the driving ports the HTTP API serves.
type Ports struct {
	// Ingestion stores uploaded documents.
	Ingestion driving.IngestionService

	// Retrieval answers search requests.
	Retrieval driving.RetrievalService

	// Collection lists vector collections.
	Collection driving.CollectionService

	// Folder manages folders. Optional; folder routes answer 404 without it.
	Folder driving.FolderService

	// Extractor supplies the accepted upload types. Optional.
	Extractor driving.TextExtractor
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Ingestion == nil:
		return ErrMissingIngestionService
	case p.Retrieval == nil:
		return ErrMissingRetrievalService
	case p.Collection == nil:
		return ErrMissingCollectionService
	}
	return nil
}
