package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// DismissedCap is the maximum number of dismissed notifications retained
// per user. When a dismissal exceeds the cap the oldest dismissed record
// is evicted.
const DismissedCap = 100

// Manager owns the per-user notification queues. It is the authoritative
// in-memory view of queue state and writes every mutation through to the
// backing QueueStore, so a restart only loses undelivered in-flight
// channel sends, never queue state.
//
// All methods are safe for concurrent use. State for a user is hydrated
// from the store on first access.
type Manager struct {
	store  store.QueueStore
	logger *slog.Logger

	mu     sync.Mutex
	queues map[uuid.UUID]*userQueue

	// now is swapped out in tests
	now func() time.Time
}

// userQueue holds one user's notifications. The dismissed list keeps
// dismissal order so cap eviction removes the oldest first.
type userQueue struct {
	mu             sync.Mutex
	items          map[uuid.UUID]*domain.Notification
	dismissedOrder []uuid.UUID
}

// NewManager creates a queue manager backed by the given store.
func NewManager(queueStore store.QueueStore, logger *slog.Logger) *Manager {
	if queueStore == nil {
		panic("queueStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:  queueStore,
		logger: logger.With(slog.String("component", "queue_manager")),
		queues: make(map[uuid.UUID]*userQueue),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue adds a notification to its owner's queue. A notification whose
// ID is already present is ignored, which makes deterministic producers
// idempotent. Returns true when the notification was newly added.
func (m *Manager) Enqueue(ctx context.Context, n *domain.Notification) (bool, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if err := n.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	q, err := m.queueFor(ctx, n.UserID)
	if err != nil {
		return false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, m.now())

	if _, exists := q.items[n.ID]; exists {
		log.Debug("duplicate notification ignored",
			slog.String("notification_id", n.ID.String()),
			slog.String("user_id", n.UserID.String()))
		return false, nil
	}

	copied := *n
	if err := m.store.Save(ctx, &copied); err != nil {
		return false, fmt.Errorf("failed to persist notification: %w", err)
	}
	q.items[copied.ID] = &copied

	log.Debug("notification enqueued",
		slog.String("notification_id", copied.ID.String()),
		slog.String("user_id", copied.UserID.String()),
		slog.String("type", string(copied.Type)),
		slog.Time("scheduled_for", copied.ScheduledFor))

	return true, nil
}

// ProcessDue transitions the user's due pending notifications to
// delivered-active, honoring the given preferences. Suppressed records
// stay pending and are reconsidered on the next pass. Delivered records
// are returned in scheduled order.
func (m *Manager) ProcessDue(
	ctx context.Context,
	userID uuid.UUID,
	prefs domain.Preferences,
) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)
	now := m.now()

	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, now)

	var delivered []*domain.Notification
	for _, n := range q.items {
		if !n.IsPending() || !n.IsDue(now) {
			continue
		}
		if prefs.Suppresses(n, now) {
			continue
		}

		n.MarkDelivered(now)
		if err := m.store.Save(ctx, n); err != nil {
			// Roll the in-memory transition back so the record is retried
			// on the next pass.
			n.Delivered = false
			n.DeliveredAt = nil
			return nil, fmt.Errorf("failed to persist delivery: %w", err)
		}
		delivered = append(delivered, copyNotification(n))
	}

	sortByScheduledFor(delivered)

	if len(delivered) > 0 {
		log.Debug("notifications delivered",
			slog.String("user_id", userID.String()),
			slog.Int("count", len(delivered)))
	}

	return delivered, nil
}

// Dismiss moves a notification into the dismissed state. Dismissing an
// already dismissed or unknown notification is a no-op, never an error;
// the client may race with expiry or another device. The dismissed list
// is capped at DismissedCap; the oldest dismissed record is evicted past
// the cap.
func (m *Manager) Dismiss(ctx context.Context, userID, id uuid.UUID) error {
	now := m.now()

	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, now)

	n, ok := q.items[id]
	if !ok {
		m.logger.Debug("dismiss of unknown notification ignored",
			slog.String("notification_id", id.String()),
			slog.String("user_id", userID.String()))
		return nil
	}
	if n.Dismissed {
		return nil
	}

	n.Dismiss(now)
	if err := m.store.Save(ctx, n); err != nil {
		n.Dismissed = false
		n.DismissedAt = nil
		return fmt.Errorf("failed to persist dismissal: %w", err)
	}
	q.dismissedOrder = append(q.dismissedOrder, id)

	m.enforceDismissedCapLocked(ctx, q)
	return nil
}

// Snooze re-pends a delivered-active notification for now+d. Snoozing a
// record that is unknown, pending or dismissed is a no-op, never an
// error: the caller may race with a background sweep and the queue must
// stay unchanged.
func (m *Manager) Snooze(ctx context.Context, userID, id uuid.UUID, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: snooze duration must be positive", ErrInvalidAction)
	}
	now := m.now()

	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, now)

	n, ok := q.items[id]
	if !ok || !n.IsDeliveredActive() {
		m.logger.Debug("snooze without a delivered notification ignored",
			slog.String("notification_id", id.String()),
			slog.String("user_id", userID.String()))
		return nil
	}

	prevScheduled, prevDeliveredAt := n.ScheduledFor, n.DeliveredAt
	n.Snooze(now, d)
	if err := m.store.Save(ctx, n); err != nil {
		n.ScheduledFor = prevScheduled
		n.Delivered = true
		n.DeliveredAt = prevDeliveredAt
		return fmt.Errorf("failed to persist snooze: %w", err)
	}
	return nil
}

// ClearAll removes every notification the user has, in any state.
func (m *Manager) ClearAll(ctx context.Context, userID uuid.UUID) error {
	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := m.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	q.items = make(map[uuid.UUID]*domain.Notification)
	q.dismissedOrder = nil
	return nil
}

// UnreadCount reports the user's delivered-active notification count.
func (m *Manager) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, m.now())

	count := 0
	for _, n := range q.items {
		if n.IsDeliveredActive() {
			count++
		}
	}
	return count, nil
}

// List returns the user's notifications selected by the filter, in
// scheduled order.
func (m *Manager) List(
	ctx context.Context,
	userID uuid.UUID,
	filter Filter,
) ([]*domain.Notification, error) {
	q, err := m.queueFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	m.expireLocked(ctx, q, m.now())

	var out []*domain.Notification
	for _, n := range q.items {
		switch filter {
		case FilterPending:
			if !n.IsPending() {
				continue
			}
		case FilterDelivered, FilterUnread:
			if !n.IsDeliveredActive() {
				continue
			}
		case FilterDismissed:
			if !n.Dismissed {
				continue
			}
		case FilterAll:
			// keep everything live
		default:
			return nil, ErrInvalidFilter
		}
		out = append(out, copyNotification(n))
	}

	sortByScheduledFor(out)
	return out, nil
}

// sortByScheduledFor orders notifications by scheduled time, equal times
// by insertion order (creation time, then ID for same-instant inserts).
func sortByScheduledFor(ns []*domain.Notification) {
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].ScheduledFor.Equal(ns[j].ScheduledFor) {
			return ns[i].ScheduledFor.Before(ns[j].ScheduledFor)
		}
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.Before(ns[j].CreatedAt)
		}
		return ns[i].ID.String() < ns[j].ID.String()
	})
}

// ActiveUsers lists users whose hydrated queues hold at least one pending
// notification. The background sweeper uses this to bound its fan-out.
func (m *Manager) ActiveUsers() []uuid.UUID {
	m.mu.Lock()
	queues := make(map[uuid.UUID]*userQueue, len(m.queues))
	for id, q := range m.queues {
		queues[id] = q
	}
	m.mu.Unlock()

	var users []uuid.UUID
	for id, q := range queues {
		q.mu.Lock()
		for _, n := range q.items {
			if n.IsPending() {
				users = append(users, id)
				break
			}
		}
		q.mu.Unlock()
	}
	return users
}

// queueFor returns the user's queue, hydrating it from the store on
// first access.
func (m *Manager) queueFor(ctx context.Context, userID uuid.UUID) (*userQueue, error) {
	m.mu.Lock()
	q, ok := m.queues[userID]
	if ok {
		m.mu.Unlock()
		return q, nil
	}
	q = &userQueue{items: make(map[uuid.UUID]*domain.Notification)}
	q.mu.Lock()
	m.queues[userID] = q
	m.mu.Unlock()
	defer q.mu.Unlock()

	stored, err := m.store.GetByUser(ctx, userID)
	if err != nil {
		m.mu.Lock()
		delete(m.queues, userID)
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to hydrate notification queue: %w", err)
	}

	for _, n := range stored {
		q.items[n.ID] = copyNotification(n)
		if n.Dismissed {
			q.dismissedOrder = append(q.dismissedOrder, n.ID)
		}
	}
	// Restore dismissal order from timestamps.
	sort.Slice(q.dismissedOrder, func(i, j int) bool {
		a, b := q.items[q.dismissedOrder[i]], q.items[q.dismissedOrder[j]]
		switch {
		case a.DismissedAt == nil:
			return true
		case b.DismissedAt == nil:
			return false
		default:
			return a.DismissedAt.Before(*b.DismissedAt)
		}
	})

	return q, nil
}

// expireLocked garbage-collects expired notifications. A pending or
// delivered-active record past its expiry moves to dismissed; an
// already dismissed one is dropped. Store writes are best effort; a
// failure leaves the record for the next pass.
func (m *Manager) expireLocked(ctx context.Context, q *userQueue, now time.Time) {
	for id, n := range q.items {
		if !n.IsExpired(now) {
			continue
		}
		if n.Dismissed {
			if err := m.store.Delete(ctx, id); err != nil {
				m.logger.Warn("failed to delete expired notification",
					slog.String("notification_id", id.String()),
					slog.String("error", err.Error()))
				continue
			}
			delete(q.items, id)
			q.dismissedOrder = removeID(q.dismissedOrder, id)
			continue
		}

		n.Dismiss(now)
		if err := m.store.Save(ctx, n); err != nil {
			n.Dismissed = false
			n.DismissedAt = nil
			m.logger.Warn("failed to dismiss expired notification",
				slog.String("notification_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		q.dismissedOrder = append(q.dismissedOrder, id)
	}
	m.enforceDismissedCapLocked(ctx, q)
}

// enforceDismissedCapLocked evicts the oldest dismissed records past
// DismissedCap.
func (m *Manager) enforceDismissedCapLocked(ctx context.Context, q *userQueue) {
	for len(q.dismissedOrder) > DismissedCap {
		oldest := q.dismissedOrder[0]
		if err := m.store.Delete(ctx, oldest); err != nil {
			m.logger.Warn("failed to evict dismissed notification",
				slog.String("notification_id", oldest.String()),
				slog.String("error", err.Error()))
			return
		}
		q.dismissedOrder = q.dismissedOrder[1:]
		delete(q.items, oldest)
	}
}

func copyNotification(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
