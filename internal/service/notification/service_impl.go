package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// DefaultSnooze is used when a snooze action does not carry a duration.
const DefaultSnooze = time.Hour

// Verify interface compliance at compile time
var _ NotificationService = (*notificationServiceImpl)(nil)

// notificationServiceImpl implements the NotificationService interface
// by composing the queue manager, reminder generation, preferences and
// the channel dispatcher.
type notificationServiceImpl struct {
	cards      store.CardStore
	manager    *Manager
	prefs      PreferencesProvider
	dispatcher *Dispatcher
	reminders  ReminderOptions
	logger     *slog.Logger
	// now is swapped out in tests
	now func() time.Time
}

// NewNotificationService creates a new NotificationService implementation.
// The dispatcher may be nil when no outward channels are configured.
func NewNotificationService(
	cards store.CardStore,
	manager *Manager,
	prefs PreferencesProvider,
	dispatcher *Dispatcher,
	reminders ReminderOptions,
	logger *slog.Logger,
) NotificationService {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if manager == nil {
		panic("manager cannot be nil")
	}
	if prefs == nil {
		panic("prefs cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &notificationServiceImpl{
		cards:      cards,
		manager:    manager,
		prefs:      prefs,
		dispatcher: dispatcher,
		reminders:  reminders,
		logger:     logger.With(slog.String("component", "notification_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReviewReminders implements NotificationService.GenerateReviewReminders.
func (s *notificationServiceImpl) GenerateReviewReminders(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, &ServiceError{
			Operation: "generate_review_reminders",
			Message:   "failed to load preferences",
			Err:       err,
		}
	}

	dueCards, err := s.cards.GetDue(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{
			Operation: "generate_review_reminders",
			Message:   "failed to load due cards",
			Err:       err,
		}
	}

	reminders := GenerateReviewReminders(userID, dueCards, prefs, now, s.reminders)

	var added []*domain.Notification
	for _, reminder := range reminders {
		ok, err := s.manager.Enqueue(ctx, reminder)
		if err != nil {
			return added, &ServiceError{
				Operation: "generate_review_reminders",
				Message:   "failed to enqueue reminder",
				Err:       err,
			}
		}
		if ok {
			added = append(added, reminder)
		}
	}

	log.Debug("review reminders generated",
		slog.String("user_id", userID.String()),
		slog.Int("due_cards", len(dueCards)),
		slog.Int("generated", len(reminders)),
		slog.Int("enqueued", len(added)))

	return added, nil
}

// ProcessDue implements NotificationService.ProcessDue.
func (s *notificationServiceImpl) ProcessDue(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, &ServiceError{
			Operation: "process_due",
			Message:   "failed to load preferences",
			Err:       err,
		}
	}

	delivered, err := s.manager.ProcessDue(ctx, userID, prefs)
	if err != nil {
		return nil, &ServiceError{
			Operation: "process_due",
			Message:   "failed to deliver notifications",
			Err:       err,
		}
	}

	if s.dispatcher != nil && len(delivered) > 0 {
		s.dispatcher.Dispatch(ctx, delivered, prefs)
	}

	return delivered, nil
}

// NotificationAction implements NotificationService.NotificationAction.
func (s *notificationServiceImpl) NotificationAction(
	ctx context.Context,
	userID uuid.UUID,
	req ActionRequest,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var err error
	switch req.Action {
	case ActionDismiss:
		err = s.manager.Dismiss(ctx, userID, req.NotificationID)
	case ActionSnooze:
		d := req.SnoozeFor
		if d <= 0 {
			d = DefaultSnooze
		}
		err = s.manager.Snooze(ctx, userID, req.NotificationID, d)
	case ActionClearAll:
		err = s.manager.ClearAll(ctx, userID)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidAction, req.Action)
	}

	if err != nil {
		if errors.Is(err, ErrInvalidAction) {
			return err
		}
		log.Error("notification action failed",
			slog.String("user_id", userID.String()),
			slog.String("action", string(req.Action)),
			slog.String("error", err.Error()))
		return &ServiceError{
			Operation: "notification_action",
			Message:   fmt.Sprintf("failed to apply %s", req.Action),
			Err:       err,
		}
	}

	return nil
}

// GetNotifications implements NotificationService.GetNotifications.
func (s *notificationServiceImpl) GetNotifications(
	ctx context.Context,
	userID uuid.UUID,
	filter Filter,
) ([]*domain.Notification, int, error) {
	if filter == "" {
		filter = FilterUnread
	}

	if filter == FilterUnreadCount {
		count, err := s.manager.UnreadCount(ctx, userID)
		if err != nil {
			return nil, 0, &ServiceError{
				Operation: "get_notifications",
				Message:   "failed to count unread notifications",
				Err:       err,
			}
		}
		return nil, count, nil
	}

	list, err := s.manager.List(ctx, userID, filter)
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) {
			return nil, 0, err
		}
		return nil, 0, &ServiceError{
			Operation: "get_notifications",
			Message:   "failed to list notifications",
			Err:       err,
		}
	}

	count, err := s.manager.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, &ServiceError{
			Operation: "get_notifications",
			Message:   "failed to count unread notifications",
			Err:       err,
		}
	}

	return list, count, nil
}

// UnreadCount implements NotificationService.UnreadCount.
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.manager.UnreadCount(ctx, userID)
	if err != nil {
		return 0, &ServiceError{
			Operation: "unread_count",
			Message:   "failed to count unread notifications",
			Err:       err,
		}
	}
	return count, nil
}
