package indexer

import (
	"context"

	"github.com/gabapcia/registrywatch/internal/registry"
)

// Sink receives the decoded events of a batch.
type Sink interface {
	// Publish delivers events in order. A nil error means every event was
	// accepted. Publish may be called again with the same events after a
	// failure or a restart, so events must be deduplicated by Event.ID.
	Publish(ctx context.Context, events []registry.Event) error
}
