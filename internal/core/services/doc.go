// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval pipeline is assembled from these pieces:
//
//   - TextExtractor: media type dispatch over driven.Extractor
//   - EmbeddingClient: truncation, caching and concurrent batches
//   - CollectionRouter: tenant to collection mapping and provisioning
//   - IngestionService: extract, chunk, embed, upsert
//   - RetrievalService: embed, fan out, threshold, merge
//   - FolderService: folder records and document counts
//
// Services are pure Go with no CGO dependencies.
package services
