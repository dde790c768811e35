package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `id, user_id, front, back, tags, difficulty, interval_ns,
	next_review_at, last_reviewed_at, review_count, success_rate, created_at, updated_at`

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
// Returns validation errors from the domain Card if data is invalid.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.UserID,
		card.Front,
		card.Back,
		tags,
		card.Difficulty,
		int64(card.Interval),
		card.NextReviewAt,
		nullableTime(card.LastReviewedAt),
		card.ReviewCount,
		card.SuccessRate,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("user_id", card.UserID.String()))
		return MapError(err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", card.UserID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
// It retrieves a card by its unique ID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
// It writes back only the scheduling fields of the card.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET difficulty = $2,
			interval_ns = $3,
			next_review_at = $4,
			last_reviewed_at = $5,
			review_count = $6,
			success_rate = $7,
			updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Difficulty,
		int64(card.Interval),
		card.NextReviewAt,
		nullableTime(card.LastReviewedAt),
		card.ReviewCount,
		card.SuccessRate,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update card scheduling",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		return err
	}

	log.Debug("card scheduling updated",
		slog.String("card_id", card.ID.String()),
		slog.Time("next_review_at", card.NextReviewAt))
	return nil
}

// GetByUser implements store.CardStore.GetByUser
// It retrieves all cards owned by the given user.
func (s *PostgresCardStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 ORDER BY created_at`
	return s.queryCards(ctx, query, userID)
}

// GetDue implements store.CardStore.GetDue
// It retrieves the user's cards due at or before the given instant.
func (s *PostgresCardStore) GetDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at
	`
	return s.queryCards(ctx, query, userID, now)
}

// Delete implements store.CardStore.Delete
// It removes a card from the store by its ID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "card")
}

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore that runs all operations on the given transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// queryCards runs a multi-row card query and scans the results.
func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("card query failed", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard reads one card row into a domain.Card.
func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var tags []byte
	var intervalNs int64
	var lastReviewed sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&tags,
		&card.Difficulty,
		&intervalNs,
		&card.NextReviewAt,
		&lastReviewed,
		&card.ReviewCount,
		&card.SuccessRate,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &card.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	card.Interval = time.Duration(intervalNs)
	if lastReviewed.Valid {
		card.LastReviewedAt = lastReviewed.Time
	}

	return &card, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
