package notification

import (
	"context"
	"log/slog"

	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// DeliveryChannel pushes a delivered notification out through one
// mechanism. Channels may fail independently; a channel failure never
// affects queue state, which has already recorded the delivery.
type DeliveryChannel interface {
	// Name identifies the channel for preference matching.
	Name() domain.Channel

	// Send pushes the notification out. Implementations must respect
	// context cancellation.
	Send(ctx context.Context, n *domain.Notification) error
}

// LogChannel is a delivery channel that records sends in the structured
// log. It stands in for email and push providers until real ones are
// wired up, and doubles as a delivery audit trail.
type LogChannel struct {
	name   domain.Channel
	logger *slog.Logger
}

// NewLogChannel creates a logging stand-in for the named channel.
func NewLogChannel(name domain.Channel, logger *slog.Logger) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{
		name:   name,
		logger: logger.With(slog.String("component", "log_channel"), slog.String("channel", string(name))),
	}
}

// Name implements DeliveryChannel.Name.
func (c *LogChannel) Name() domain.Channel {
	return c.name
}

// Send implements DeliveryChannel.Send.
func (c *LogChannel) Send(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Info("notification sent",
		slog.String("notification_id", n.ID.String()),
		slog.String("user_id", n.UserID.String()),
		slog.String("type", string(n.Type)),
		slog.String("priority", string(n.Priority)),
		slog.String("title", n.Title))
	return nil
}

var _ DeliveryChannel = (*LogChannel)(nil)
