package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notification-specific validation errors
var (
	// ErrNotificationIDEmpty is returned when a notification ID is empty or nil.
	ErrNotificationIDEmpty = errors.New("notification ID cannot be empty")

	// ErrNotificationUserIDEmpty is returned when a notification's user ID is empty or nil.
	ErrNotificationUserIDEmpty = errors.New("notification user ID cannot be empty")

	// ErrNotificationTitleEmpty is returned when a notification's title is empty.
	ErrNotificationTitleEmpty = errors.New("notification title cannot be empty")

	// ErrInvalidNotificationType is returned when a notification type is not recognized.
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// ErrInvalidNotificationPriority is returned when a notification priority is not recognized.
	ErrInvalidNotificationPriority = errors.New("invalid notification priority")

	// ErrNotificationScheduleZero is returned when a notification has no scheduled time.
	ErrNotificationScheduleZero = errors.New("notification scheduled time must be set")
)

// NotificationType identifies what kind of event a notification carries.
type NotificationType string

// Possible notification type values
const (
	NotificationTypeReviewReminder   NotificationType = "review_reminder"
	NotificationTypeReflectionPrompt NotificationType = "reflection_prompt"
	NotificationTypeAchievement      NotificationType = "achievement"
	NotificationTypeStreakReminder   NotificationType = "streak_reminder"
)

// NotificationPriority ranks how urgently a notification should surface.
type NotificationPriority string

// Possible notification priority values
const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is a single scheduled notification owned by one user's
// queue. A record is always in exactly one of three logical states:
//
//	pending          !Delivered && !Dismissed
//	delivered-active Delivered && !Dismissed
//	dismissed        Dismissed
//
// Transitions are one-directional except snooze, which moves a
// delivered-active record back to pending with a new ScheduledFor.
type Notification struct {
	ID       uuid.UUID            `json:"id"`
	UserID   uuid.UUID            `json:"user_id"`
	Type     NotificationType     `json:"type"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Payload  json.RawMessage      `json:"payload,omitempty"`
	Priority NotificationPriority `json:"priority"`

	ScheduledFor time.Time  `json:"scheduled_for"`
	Delivered    bool       `json:"delivered"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	Dismissed    bool       `json:"dismissed"`
	DismissedAt  *time.Time `json:"dismissed_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewNotification creates a pending notification scheduled for the given
// instant. The caller supplies the ID so producers can derive stable,
// deterministic IDs (see the notification service's reminder generation).
func NewNotification(
	id, userID uuid.UUID,
	nType NotificationType,
	title, message string,
	priority NotificationPriority,
	scheduledFor time.Time,
) (*Notification, error) {
	n := &Notification{
		ID:           id,
		UserID:       userID,
		Type:         nType,
		Title:        title,
		Message:      message,
		Priority:     priority,
		ScheduledFor: scheduledFor,
		CreatedAt:    time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNotificationIDEmpty
	}

	if n.UserID == uuid.Nil {
		return ErrNotificationUserIDEmpty
	}

	if !isValidNotificationType(n.Type) {
		return ErrInvalidNotificationType
	}

	if n.Title == "" {
		return ErrNotificationTitleEmpty
	}

	if !isValidNotificationPriority(n.Priority) {
		return ErrInvalidNotificationPriority
	}

	if n.ScheduledFor.IsZero() {
		return ErrNotificationScheduleZero
	}

	return nil
}

// IsPending reports whether the record has not yet been delivered or dismissed.
func (n *Notification) IsPending() bool {
	return !n.Delivered && !n.Dismissed
}

// IsDeliveredActive reports whether the record has been delivered but not
// yet dismissed. Delivered-active records drive the unread badge.
func (n *Notification) IsDeliveredActive() bool {
	return n.Delivered && !n.Dismissed
}

// IsDue reports whether a pending record should be delivered at the given instant.
func (n *Notification) IsDue(now time.Time) bool {
	return !n.ScheduledFor.After(now)
}

// IsExpired reports whether the record's expiry, if any, has passed.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

// MarkDelivered transitions a pending record to delivered-active.
// Calling it on a non-pending record is a no-op.
func (n *Notification) MarkDelivered(now time.Time) {
	if !n.IsPending() {
		return
	}
	n.Delivered = true
	at := now
	n.DeliveredAt = &at
}

// Dismiss moves the record into the dismissed state from either pending
// or delivered-active. Dismissing an already dismissed record is a no-op.
func (n *Notification) Dismiss(now time.Time) {
	if n.Dismissed {
		return
	}
	n.Dismissed = true
	at := now
	n.DismissedAt = &at
}

// Snooze re-pends a delivered-active record for a later instant, clearing
// the delivery markers. Snoozing a record in any other state is a no-op:
// the caller may race with a background sweep and that race is benign.
func (n *Notification) Snooze(now time.Time, d time.Duration) {
	if !n.IsDeliveredActive() {
		return
	}
	n.Delivered = false
	n.DeliveredAt = nil
	n.ScheduledFor = now.Add(d)
}

// isValidNotificationType checks if the given type is one of the known values.
func isValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeReviewReminder,
		NotificationTypeReflectionPrompt,
		NotificationTypeAchievement,
		NotificationTypeStreakReminder:
		return true
	default:
		return false
	}
}

// isValidNotificationPriority checks if the given priority is one of the known values.
func isValidNotificationPriority(p NotificationPriority) bool {
	switch p {
	case NotificationPriorityLow,
		NotificationPriorityMedium,
		NotificationPriorityHigh:
		return true
	default:
		return false
	}
}
