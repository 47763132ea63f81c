package notify

import (
	"context"
	"log/slog"

	"campus/contexts/identity-access/admin-management-service/ports"
)

// LogNotifier records deliveries to the structured log. It stands in for the
// mail/SMS gateway until that integration lands; the payload secret is never
// logged.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, input ports.NotificationInput) (bool, error) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification dispatched",
		"event", "admin_mgmt_notification_dispatched",
		"module", "identity-access/admin-management-service",
		"layer", "adapter",
		"address", input.Address,
		"template", input.Template,
	)
	return true, nil
}

var _ ports.Notifier = LogNotifier{}
