package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// Action identifies a user-initiated operation on their notification queue.
type Action string

// Supported queue actions
const (
	ActionDismiss  Action = "dismiss"
	ActionSnooze   Action = "snooze"
	ActionClearAll Action = "clear_all"
)

// Filter selects which notifications a listing returns.
type Filter string

// Supported listing filters
const (
	// FilterPending returns records waiting for delivery.
	FilterPending Filter = "pending"

	// FilterDelivered returns delivered notifications that have not been
	// dismissed or expired.
	FilterDelivered Filter = "delivered"

	// FilterDismissed returns the retained dismissed records.
	FilterDismissed Filter = "dismissed"

	// FilterUnread is an alias for FilterDelivered; it drives the badge.
	FilterUnread Filter = "unread"

	// FilterAll returns every live notification: pending, delivered and
	// recently dismissed.
	FilterAll Filter = "all"

	// FilterUnreadCount returns no records, only the unread count.
	FilterUnreadCount Filter = "unread_count"
)

// ActionRequest describes a queue action against a single notification.
// NotificationID is ignored for ActionClearAll. SnoozeFor applies only
// to ActionSnooze.
type ActionRequest struct {
	Action         Action
	NotificationID uuid.UUID
	SnoozeFor      time.Duration
}

// NotificationService manages per-user notification queues: scheduling
// review reminders, delivering due notifications and applying user
// actions against the queue.
type NotificationService interface {
	// GenerateReviewReminders inspects the user's due cards and enqueues
	// review reminder notifications for them. Generation is deterministic:
	// repeated calls within the same due window produce reminders with the
	// same IDs, which the queue deduplicates.
	//
	// Returns the reminders that were newly enqueued.
	GenerateReviewReminders(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// ProcessDue delivers the user's pending notifications whose scheduled
	// time has arrived, honoring the user's notification preferences.
	// Returns the notifications delivered by this call.
	ProcessDue(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// NotificationAction applies a dismiss, snooze or clear_all action to
	// the user's queue. Actions targeting an unknown notification are
	// no-ops: the client may race with a background sweep or another
	// device, and that race is benign. ErrInvalidAction is returned for
	// unknown action names and non-positive snooze durations.
	NotificationAction(ctx context.Context, userID uuid.UUID, req ActionRequest) error

	// GetNotifications lists the user's notifications according to the
	// given filter, together with the current unread count. With
	// FilterUnreadCount the record slice is nil and only the count is
	// meaningful.
	GetNotifications(
		ctx context.Context,
		userID uuid.UUID,
		filter Filter,
	) ([]*domain.Notification, int, error)

	// UnreadCount reports how many delivered, undismissed notifications
	// the user currently has.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Common error types for NotificationService
var (
	// ErrInvalidAction indicates the requested action cannot be applied.
	ErrInvalidAction = errors.New("invalid notification action")

	// ErrInvalidFilter indicates an unknown listing filter.
	ErrInvalidFilter = errors.New("invalid notification filter")
)

// ServiceError wraps errors from the notification service with additional
// context so consumers can differentiate failures with errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "process_due")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
