package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// checkpointer persists the in-progress collection every n steps. Once the
// context is done checkpoints are skipped; the final save ignores
// cancellation so an interrupted run keeps its partial result.
type checkpointer struct {
	catalog ports.CatalogRepository
	every   int
	logger  *slog.Logger
}

func (c checkpointer) step(ctx context.Context, done int, records []domain.Fish) error {
	if c.every <= 0 || done == 0 || done%c.every != 0 || ctx.Err() != nil {
		return nil
	}
	if err := c.catalog.Save(ctx, records); err != nil {
		return fmt.Errorf("checkpoint after %d: %w", done, err)
	}
	if c.logger != nil {
		c.logger.Info("checkpoint saved", "done", done, "records", len(records))
	}
	return nil
}

func (c checkpointer) final(ctx context.Context, records []domain.Fish) error {
	if err := c.catalog.Save(context.WithoutCancel(ctx), records); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
