package usecase

import (
	"context"
	"time"

	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/queue"
)

// EventPublisher announces community activity. It may be nil.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

const publishTimeout = 2 * time.Second

// publish is best effort. A failed publish never fails the request.
func publish(publisher EventPublisher, log *logger.Logger, event queue.Event) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("[EVENTS] Failed to publish %s for post %s: %v", event.Type, event.PostID, err)
	}
}
