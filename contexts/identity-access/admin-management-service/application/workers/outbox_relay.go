package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "campus/contexts/identity-access/admin-management-service/application"
	"campus/contexts/identity-access/admin-management-service/ports"
)

// OutboxRelay publishes persisted admin-policy outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.PolicyChangedPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after bus publish succeeds. It stops on the first failure so
// the next cycle reprocesses remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("admin outbox list failed",
			"event", "admin_mgmt_outbox_list_failed",
			"module", "identity-access/admin-management-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("admin outbox relay found no pending rows",
			"event", "admin_mgmt_outbox_relay_noop",
			"module", "identity-access/admin-management-service",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.PolicyChangedEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("admin outbox decode failed",
				"event", "admin_mgmt_outbox_decode_failed",
				"module", "identity-access/admin-management-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if event.EventType == "" {
			event.EventType = row.EventType
		}
		if err := r.Publisher.PublishPolicyChanged(ctx, event); err != nil {
			logger.Error("admin outbox publish failed",
				"event", "admin_mgmt_outbox_publish_failed",
				"module", "identity-access/admin-management-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("admin outbox mark published failed",
				"event", "admin_mgmt_outbox_mark_published_failed",
				"module", "identity-access/admin-management-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("admin outbox relay cycle completed",
		"event", "admin_mgmt_outbox_relay_completed",
		"module", "identity-access/admin-management-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
