package commands

import (
	"context"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/domain/events"
)

// persistAndPublish appends events to the store and then publishes them.
// Publish failures are logged, not returned: the outbox processor replays
// stored events, so the mutation itself must not fail.
func persistAndPublish(
	ctx context.Context,
	store ports.EventStore,
	bus ports.EventPublisher,
	logger *zap.Logger,
	batch []events.DomainEvent,
) {
	if len(batch) == 0 {
		return
	}

	if store != nil {
		if err := store.SaveEvents(ctx, batch); err != nil {
			logger.Error("Failed to persist domain events",
				zap.Int("event_count", len(batch)),
				zap.Error(err),
			)
		}
	}

	if bus != nil {
		if err := bus.PublishBatch(ctx, batch); err != nil {
			logger.Error("Failed to publish domain events",
				zap.Int("event_count", len(batch)),
				zap.Error(err),
			)
		}
	}
}

// treeCacheKey is the cache key for a person's rendered tree
func treeCacheKey(accountID string) string {
	return "tree:" + accountID
}

// invalidateTrees drops cached trees for every account touched by a
// mutation so the next read rebuilds them
func invalidateTrees(ctx context.Context, cache ports.Cache, accountIDs ...string) {
	if cache == nil {
		return
	}
	for _, id := range accountIDs {
		_ = cache.Delete(ctx, treeCacheKey(id))
	}
}
