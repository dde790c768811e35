package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemos-app/mnemos-api/internal/domain"
	"github.com/mnemos-app/mnemos-api/internal/domain/srs"
	"github.com/mnemos-app/mnemos-api/internal/events"
	"github.com/mnemos-app/mnemos-api/internal/platform/logger"
	"github.com/mnemos-app/mnemos-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	cardStore  store.CardStore
	srsService srs.Service
	emitter    events.EventEmitter
	// db is optional; when present, SubmitReview runs its read-modify-write
	// inside a transaction via cardStore.WithTx.
	db     *sql.DB
	logger *slog.Logger
	// now is swapped out in tests
	now func() time.Time
}

// NewReviewService creates a new ReviewService implementation.
// The emitter may be nil when no downstream consumers exist; the db may
// be nil when the card store is not transactional (e.g. in tests).
func NewReviewService(
	cardStore store.CardStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) ReviewService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		cardStore:  cardStore,
		srsService: srsService,
		emitter:    emitter,
		db:         db,
		logger:     logger.With(slog.String("component", "review_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	outcome domain.ReviewOutcome,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", outcome.Quality))

	if err := outcome.Validate(); err != nil {
		log.Warn("invalid review outcome",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}

	var updated *domain.Card
	err := s.runInTransaction(ctx, func(ctx context.Context, cards store.CardStore) error {
		card, err := s.loadOwnedCard(ctx, cards, userID, cardID)
		if err != nil {
			return err
		}

		updated, err = s.srsService.CalculateNextReview(card, &outcome)
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		if err := cards.UpdateScheduling(ctx, updated); err != nil {
			return fmt.Errorf("failed to update card scheduling: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitReviewError("failed to submit review", err)
	}

	s.emitReviewCompleted(ctx, updated, outcome)

	log.Debug("review processed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", outcome.Quality),
		slog.Int("difficulty", updated.Difficulty),
		slog.Float64("success_rate", updated.SuccessRate),
		slog.Time("next_review_at", updated.NextReviewAt))

	return updated, nil
}

// PostponeReview implements ReviewService.PostponeReview.
func (s *reviewServiceImpl) PostponeReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Card
	err := s.runInTransaction(ctx, func(ctx context.Context, cards store.CardStore) error {
		card, err := s.loadOwnedCard(ctx, cards, userID, cardID)
		if err != nil {
			return err
		}

		updated, err = s.srsService.PostponeReview(card, days, s.now())
		if err != nil {
			return fmt.Errorf("failed to postpone review: %w", err)
		}

		if err := cards.UpdateScheduling(ctx, updated); err != nil {
			return fmt.Errorf("failed to update card scheduling: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) ||
			errors.Is(err, srs.ErrInvalidDays) {
			return nil, err
		}
		log.Error("failed to postpone review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewPostponeReviewError("failed to postpone review", err)
	}

	log.Debug("review postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("next_review_at", updated.NextReviewAt))

	return updated, nil
}

// loadOwnedCard fetches a card and verifies ownership.
func (s *reviewServiceImpl) loadOwnedCard(
	ctx context.Context,
	cards store.CardStore,
	userID uuid.UUID,
	cardID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("card not found for review",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	if card.UserID != userID {
		log.Warn("user does not own card",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("owner_id", card.UserID.String()))
		return nil, ErrCardNotOwned
	}

	return card, nil
}

// runInTransaction executes fn inside a database transaction when a db
// handle is configured, and directly against the card store otherwise.
func (s *reviewServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(ctx context.Context, cards store.CardStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.cardStore)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.cardStore.WithTx(tx))
	})
}

// emitReviewCompleted publishes a review_completed event. Emission is
// best effort; a failing consumer never fails the review itself.
func (s *reviewServiceImpl) emitReviewCompleted(
	ctx context.Context,
	card *domain.Card,
	outcome domain.ReviewOutcome,
) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewEvent(events.EventTypeReviewCompleted, events.ReviewCompletedPayload{
		UserID:       card.UserID,
		CardID:       card.ID,
		Quality:      outcome.Quality,
		Successful:   outcome.IsSuccessful(),
		ReviewedAt:   outcome.Timestamp,
		NextReviewAt: card.NextReviewAt,
	})
	if err != nil {
		s.logger.Error("failed to build review_completed event", slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("review_completed event handler failed", slog.String("error", err.Error()))
	}
}
