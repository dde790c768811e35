package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/task"
)

// deliveryTask carries one notification to one channel. It implements
// task.Task so the shared worker pool can execute sends off the caller's
// goroutine.
type deliveryTask struct {
	id           uuid.UUID
	channel      DeliveryChannel
	notification *domain.Notification
}

// ID implements task.Task.ID.
func (t *deliveryTask) ID() uuid.UUID {
	return t.id
}

// Type implements task.Task.Type.
func (t *deliveryTask) Type() string {
	return task.TaskTypeNotificationDelivery
}

// Execute implements task.Task.Execute.
func (t *deliveryTask) Execute(ctx context.Context) error {
	return t.channel.Send(ctx, t.notification)
}

// Dispatcher fans delivered notifications out to the user's enabled
// channels through the background task queue. Dispatch is fire and
// forget: a full queue or a failing channel drops the send with a log
// line, never an error to the caller. The in-app channel is the queue
// state itself and is never dispatched.
type Dispatcher struct {
	queue    task.TaskQueueWriter
	channels map[domain.Channel]DeliveryChannel
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher that enqueues delivery tasks on the
// given queue.
func NewDispatcher(queue task.TaskQueueWriter, logger *slog.Logger) *Dispatcher {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		queue:    queue,
		channels: make(map[domain.Channel]DeliveryChannel),
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// RegisterChannel adds a delivery channel. Registering a channel twice
// replaces the earlier registration.
func (d *Dispatcher) RegisterChannel(c DeliveryChannel) {
	d.channels[c.Name()] = c
}

// Dispatch enqueues one delivery task per enabled channel for each
// notification.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	notifications []*domain.Notification,
	prefs domain.Preferences,
) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	for _, n := range notifications {
		for name, channel := range d.channels {
			if name == domain.ChannelInApp || !prefs.ChannelEnabled(name) {
				continue
			}

			t := &deliveryTask{
				id:           uuid.New(),
				channel:      channel,
				notification: copyNotification(n),
			}
			if err := d.queue.Enqueue(t); err != nil {
				log.Warn("dropping notification delivery",
					slog.String("notification_id", n.ID.String()),
					slog.String("channel", string(name)),
					slog.String("error", err.Error()))
			}
		}
	}
}
