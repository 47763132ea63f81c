package events

import (
	"context"
	"log/slog"

	"campus/contexts/identity-access/admin-management-service/ports"
	sharedevents "campus/internal/shared/events"
)

// PolicyChangedTopic carries admin-set mutations to downstream consumers
// (decision caches, notification fan-out).
const PolicyChangedTopic = "identity.admin_policy"

// Bus is the transport surface the publisher needs from the platform layer.
type Bus interface {
	Publish(ctx context.Context, topic string, event sharedevents.Envelope) error
}

// Publisher forwards policy-change events from the outbox relay to the bus.
// A nil bus degrades to log-only publishing for local development.
type Publisher struct {
	bus    Bus
	logger *slog.Logger
}

func NewPublisher(bus Bus, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bus: bus, logger: logger}
}

func (p *Publisher) PublishPolicyChanged(ctx context.Context, event ports.PolicyChangedEvent) error {
	if p.bus != nil {
		if err := p.bus.Publish(ctx, PolicyChangedTopic, event); err != nil {
			return err
		}
	}
	p.logger.Info("admin policy changed event published",
		"event", "admin_mgmt_policy_changed_published",
		"module", "identity-access/admin-management-service",
		"layer", "adapter",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"entity_id", event.EntityID,
	)
	return nil
}

var _ ports.PolicyChangedPublisher = (*Publisher)(nil)
