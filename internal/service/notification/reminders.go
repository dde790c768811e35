package notification

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
)

// reminderNamespace is the UUIDv5 namespace for review reminder IDs.
// Changing it would re-issue reminders users have already dismissed.
var reminderNamespace = uuid.MustParse("8f0f9cb2-5c2b-4bd0-9d7a-2f6a4f4f3c11")

// Reminder generation defaults
const (
	// DefaultReminderBatchLimit caps reminders per generation pass when
	// the user has no preference of their own.
	DefaultReminderBatchLimit = 10

	// DefaultReminderExpiry is how long a reminder stays live before the
	// queue lazily drops it.
	DefaultReminderExpiry = 24 * time.Hour

	// DefaultReminderBucket is the width of the due window used to derive
	// stable reminder IDs. Two generation passes within the same bucket
	// produce identical IDs for the same card.
	DefaultReminderBucket = time.Hour

	// overdueEscalation is how far past due a card must be before its
	// reminder is raised to high priority.
	overdueEscalation = 24 * time.Hour
)

// ReminderOptions tunes review reminder generation. Zero values fall
// back to the package defaults.
type ReminderOptions struct {
	BatchLimit int
	Expiry     time.Duration
	BucketSize time.Duration
}

// withDefaults fills in zero-valued options.
func (o ReminderOptions) withDefaults() ReminderOptions {
	if o.BatchLimit <= 0 {
		o.BatchLimit = DefaultReminderBatchLimit
	}
	if o.Expiry <= 0 {
		o.Expiry = DefaultReminderExpiry
	}
	if o.BucketSize <= 0 {
		o.BucketSize = DefaultReminderBucket
	}
	return o
}

// reminderPayload is the JSON payload carried by review reminders.
type reminderPayload struct {
	CardID uuid.UUID `json:"card_id"`
}

// ReviewReminderID derives the stable ID for a card's reminder within a
// due bucket. The same (card, bucket) pair always maps to the same ID.
func ReviewReminderID(cardID uuid.UUID, bucket time.Time) uuid.UUID {
	name := fmt.Sprintf("%s@%s", cardID, bucket.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(reminderNamespace, []byte(name))
}

// GenerateReviewReminders builds reminder notifications for the user's
// due cards. It is a pure function of its inputs: no clock reads, no
// random IDs, no side effects. The most overdue cards are reminded
// first, capped by the batch limit. Cards of a disabled type produce
// nothing; quiet hours are a delivery concern and do not affect
// generation.
func GenerateReviewReminders(
	userID uuid.UUID,
	dueCards []*domain.Card,
	prefs domain.Preferences,
	now time.Time,
	opts ReminderOptions,
) []*domain.Notification {
	if !prefs.TypeEnabled(domain.NotificationTypeReviewReminder) {
		return nil
	}

	opts = opts.withDefaults()

	limit := opts.BatchLimit
	if prefs.MaxRemindersPerBatch > 0 && prefs.MaxRemindersPerBatch < limit {
		limit = prefs.MaxRemindersPerBatch
	}

	cards := make([]*domain.Card, 0, len(dueCards))
	for _, card := range dueCards {
		if card.IsDue(now) {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].NextReviewAt.Equal(cards[j].NextReviewAt) {
			return cards[i].ID.String() < cards[j].ID.String()
		}
		return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
	})
	if len(cards) > limit {
		cards = cards[:limit]
	}

	bucket := now.UTC().Truncate(opts.BucketSize)
	expiry := bucket.Add(opts.Expiry)

	reminders := make([]*domain.Notification, 0, len(cards))
	for _, card := range cards {
		priority := domain.NotificationPriorityMedium
		if now.Sub(card.NextReviewAt) >= overdueEscalation {
			priority = domain.NotificationPriorityHigh
		}

		n, err := domain.NewNotification(
			ReviewReminderID(card.ID, bucket),
			userID,
			domain.NotificationTypeReviewReminder,
			"Time to review",
			reminderMessage(card),
			priority,
			bucket,
		)
		if err != nil {
			// Due cards always carry the fields a reminder needs; a
			// validation failure here means a corrupt card, skip it.
			continue
		}
		payload, err := json.Marshal(reminderPayload{CardID: card.ID})
		if err != nil {
			continue
		}
		n.Payload = payload
		exp := expiry
		n.ExpiresAt = &exp

		reminders = append(reminders, n)
	}

	return reminders
}

// reminderMessage renders the reminder body from the card front.
// Truncation counts runes so a multi-byte character is never split.
func reminderMessage(card *domain.Card) string {
	const maxFront = 80
	front := card.Front
	if runes := []rune(front); len(runes) > maxFront {
		front = string(runes[:maxFront-3]) + "..."
	}
	return fmt.Sprintf("%q is due for review", front)
}
