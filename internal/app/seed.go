package app

import (
	"context"
	"fmt"

	memvector "github.com/custodia-labs/tala-knowledge/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// SeedFixtures ingests the sample travel documents into the admin
// collection. A document that fails is logged and skipped; the seed only
// fails when none could be stored.
func SeedFixtures(ctx context.Context, ingestion driving.IngestionService) (int, error) {
	stored := 0
	var lastErr error
	for _, d := range memvector.Fixtures() {
		_, err := ingestion.Ingest(ctx, domain.IngestRequest{
			Content:   []byte(d.Content),
			MediaType: "text/plain",
			Filename:  d.Filename,
			IsAdmin:   true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return stored, ctx.Err()
			}
			logger.Warn("Seeding %s: %v", d.Filename, err)
			lastErr = err
			continue
		}
		stored++
	}

	if stored == 0 && lastErr != nil {
		return 0, fmt.Errorf("seeding fixtures: %w", lastErr)
	}
	logger.Debug("Seeded %d fixture documents", stored)
	return stored, nil
}
