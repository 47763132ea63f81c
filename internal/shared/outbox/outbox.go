package outbox

import "time"

// Message is one outbox row persisted inside the same transaction as the
// state change it announces. The worker relay polls pending rows, publishes
// the payload to the message bus, and acknowledges each row afterwards.
type Message struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}
