package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/task"
)

// captureChannel records sends for assertions.
type captureChannel struct {
	name domain.Channel
	mu   sync.Mutex
	sent []uuid.UUID
}

func (c *captureChannel) Name() domain.Channel {
	return c.name
}

func (c *captureChannel) Send(ctx context.Context, n *domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n.ID)
	return nil
}

func (c *captureChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// drainQueue runs workers over the queue until cond holds or a deadline
// passes.
func drainQueue(t *testing.T, q *task.TaskQueue, cond func() bool) {
	t.Helper()
	pool := task.NewWorkerPool(q, task.WorkerPoolConfig{WorkerCount: 2}, testLogger())
	pool.Start()
	defer pool.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out draining delivery queue")
}

func TestDispatcherRoutesToEnabledChannels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	queue := task.NewTaskQueue(16, testLogger())
	d := NewDispatcher(queue, testLogger())

	email := &captureChannel{name: domain.ChannelEmail}
	push := &captureChannel{name: domain.ChannelPush}
	d.RegisterChannel(email)
	d.RegisterChannel(push)

	prefs := domain.Preferences{
		Channels: []domain.Channel{domain.ChannelInApp, domain.ChannelEmail},
	}

	n := pendingNotification(t, uuid.New(), time.Now().UTC())
	d.Dispatch(ctx, []*domain.Notification{n}, prefs)

	drainQueue(t, queue, func() bool { return email.sentCount() == 1 })

	assert.Equal(t, 1, email.sentCount())
	assert.Zero(t, push.sentCount(), "disabled channel must not receive sends")
}

func TestDispatcherSkipsInApp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	queue := task.NewTaskQueue(16, testLogger())
	d := NewDispatcher(queue, testLogger())

	inApp := &captureChannel{name: domain.ChannelInApp}
	d.RegisterChannel(inApp)

	n := pendingNotification(t, uuid.New(), time.Now().UTC())
	d.Dispatch(ctx, []*domain.Notification{n}, domain.DefaultPreferences())

	// Nothing was enqueued: in-app delivery is the queue state itself.
	assert.Empty(t, queue.GetChannel())
	assert.Zero(t, inApp.sentCount())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	queue := task.NewTaskQueue(1, testLogger())
	d := NewDispatcher(queue, testLogger())
	email := &captureChannel{name: domain.ChannelEmail}
	d.RegisterChannel(email)

	prefs := domain.Preferences{Channels: []domain.Channel{domain.ChannelEmail}}

	userID := uuid.New()
	batch := []*domain.Notification{
		pendingNotification(t, userID, time.Now().UTC()),
		pendingNotification(t, userID, time.Now().UTC()),
		pendingNotification(t, userID, time.Now().UTC()),
	}

	// No workers are draining, so only one task fits. The overflow is
	// dropped silently.
	d.Dispatch(ctx, batch, prefs)
	require.Len(t, queue.GetChannel(), 1)
}
