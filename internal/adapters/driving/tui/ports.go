// Package tui provides an interactive terminal interface for searching the
// travel knowledge base and browsing uploaded documents.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retrieval answers queries. Required.
	Retrieval driving.RetrievalService

	// Ingestion backs the document browser. Optional.
	Ingestion driving.IngestionService
}

// Requester identifies who the TUI acts for. Searches cover this owner's
// personal collection plus the admin collection.
type Requester struct {
	OwnerID string
	IsAdmin bool
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
