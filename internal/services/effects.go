package services

import (
	"context"
	"log"

	"messenger-service/internal/cache"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/ws"
)

// SearchOp is a deferred search-index write, named for logging.
type SearchOp struct {
	Name string
	Do   func(ctx context.Context) error
}

// Notification targets a set of users with one websocket event.
type Notification struct {
	Users []string
	Event models.UserEvent
}

// SideEffects is everything a lifecycle operation wants done after its
// ledger transaction commits: cache keys to invalidate, search documents to
// project, events to publish and users to notify.
type SideEffects struct {
	CacheKeys     []string
	SearchOps     []SearchOp
	Events        []models.DomainEvent
	Notifications []Notification
}

// Dispatcher executes post-commit side effects. Every step is best effort:
// failures are logged with enough context for a manual resync and never
// surface to the caller, because the ledger transaction already committed.
type Dispatcher struct {
	cache     cache.Store
	publisher rabbitmq.Publisher
	hub       *ws.Hub
}

// NewDispatcher constructs a Dispatcher. The hub may be nil.
func NewDispatcher(store cache.Store, publisher rabbitmq.Publisher, hub *ws.Hub) *Dispatcher {
	return &Dispatcher{cache: store, publisher: publisher, hub: hub}
}

// Run executes the side effects in order: cache, search, events, websockets.
func (d *Dispatcher) Run(ctx context.Context, fx SideEffects) {
	if len(fx.CacheKeys) > 0 && d.cache != nil {
		if err := d.cache.Invalidate(ctx, fx.CacheKeys...); err != nil {
			log.Printf("cache invalidation failed keys=%v: %v", fx.CacheKeys, err)
			observability.IncSideEffectError("cache")
		} else {
			observability.AddCacheInvalidations(len(fx.CacheKeys))
		}
	}

	for _, op := range fx.SearchOps {
		if err := op.Do(ctx); err != nil {
			log.Printf("search sync failed op=%s: %v", op.Name, err)
			observability.IncSideEffectError("search")
		}
	}

	if d.publisher != nil {
		for _, event := range fx.Events {
			if err := d.publisher.Publish(ctx, event.Type, event); err != nil {
				log.Printf("event publish failed type=%s: %v", event.Type, err)
				observability.IncSideEffectError("events")
			}
		}
	}

	if d.hub != nil {
		for _, notification := range fx.Notifications {
			d.hub.NotifyUsers(notification.Users, notification.Event)
		}
	}
}
