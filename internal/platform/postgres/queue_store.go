package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// PostgresQueueStore implements the store.QueueStore interface
// using a PostgreSQL database as the storage backend. It gives the
// notification queue manager durability across restarts.
type PostgresQueueStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQueueStore creates a new PostgreSQL implementation of the QueueStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresQueueStore(db store.DBTX, logger *slog.Logger) *PostgresQueueStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQueueStore{
		db:     db,
		logger: logger.With(slog.String("component", "queue_store")),
	}
}

// Ensure PostgresQueueStore implements store.QueueStore interface
var _ store.QueueStore = (*PostgresQueueStore)(nil)

const notificationColumns = `id, user_id, type, title, message, payload, priority,
	scheduled_for, delivered, delivered_at, dismissed, dismissed_at, expires_at, created_at`

// Save implements store.QueueStore.Save
// It inserts the notification, or overwrites the stored state when a
// record with the same ID already exists (upsert on primary key).
func (s *PostgresQueueStore) Save(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := n.Validate(); err != nil {
		log.Warn("notification validation failed during save",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()))
		return err
	}

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			scheduled_for = EXCLUDED.scheduled_for,
			delivered = EXCLUDED.delivered,
			delivered_at = EXCLUDED.delivered_at,
			dismissed = EXCLUDED.dismissed,
			dismissed_at = EXCLUDED.dismissed_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		[]byte(n.Payload),
		string(n.Priority),
		n.ScheduledFor,
		n.Delivered,
		nullableTimePtr(n.DeliveredAt),
		n.Dismissed,
		nullableTimePtr(n.DismissedAt),
		nullableTimePtr(n.ExpiresAt),
		n.CreatedAt,
	)
	if err != nil {
		log.Error("failed to save notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()),
			slog.String("user_id", n.UserID.String()))
		return MapError(err)
	}

	return nil
}

// GetByUser implements store.QueueStore.GetByUser
// It retrieves all notifications owned by the given user. An unknown
// user reads as an empty slice, never as an error.
func (s *PostgresQueueStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("notification query failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, MapError(err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return notifications, nil
}

// Delete implements store.QueueStore.Delete
// Deleting an unknown ID is a no-op.
func (s *PostgresQueueStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id); err != nil {
		log.Error("failed to delete notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}
	return nil
}

// DeleteByUser implements store.QueueStore.DeleteByUser
func (s *PostgresQueueStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		log.Error("failed to clear user notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// scanNotification reads one notification row into a domain.Notification.
func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var nType, priority string
	var payload []byte
	var deliveredAt, dismissedAt, expiresAt sql.NullTime

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&nType,
		&n.Title,
		&n.Message,
		&payload,
		&priority,
		&n.ScheduledFor,
		&n.Delivered,
		&deliveredAt,
		&n.Dismissed,
		&dismissedAt,
		&expiresAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = domain.NotificationType(nType)
	n.Priority = domain.NotificationPriority(priority)
	n.Payload = payload
	n.DeliveredAt = timePtr(deliveredAt)
	n.DismissedAt = timePtr(dismissedAt)
	n.ExpiresAt = timePtr(expiresAt)

	return &n, nil
}

// nullableTimePtr maps a nil *time.Time to NULL.
func nullableTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// timePtr maps a NULL column back to a nil *time.Time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
