// Package notify delivers rendered alert messages to recipients. Delivery
// failures are returned to the caller, which isolates them per recipient;
// a failed send never aborts an evaluation cycle.
package notify

import (
	"context"

	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Notifier is the interface for all delivery backends
type Notifier interface {
	// Send delivers a message to one recipient. The recipient is an
	// opaque chat identifier.
	Send(ctx context.Context, recipient string, text string) error

	// Broadcast delivers a message to the fixed signal channel
	Broadcast(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log instead of a chat backend.
// Useful for development and as a delivery stub in tests.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, recipient string, text string) error {
	logger.Info("Notification",
		logger.String("recipient", recipient),
		logger.String("text", text),
	)
	return nil
}

func (n *LogNotifier) Broadcast(ctx context.Context, text string) error {
	logger.Info("Broadcast",
		logger.String("text", text),
	)
	return nil
}
