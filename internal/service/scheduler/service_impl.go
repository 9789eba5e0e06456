package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// Rate failure reasons reported to metrics.
const (
	failureInvalid  = "invalid_input"
	failureNotFound = "not_found"
	failureConfig   = "deck_config"
	failureStorage  = "storage"
)

// Selection kinds reported to metrics.
const (
	selectionReview = "review"
	selectionNew    = "new"
	selectionNone   = "none"
)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	uow    store.UnitOfWork
	engine fsrs.Engine
	opts   options
	logger *slog.Logger
}

// NewService creates a scheduler backed by the given unit of work and engine.
func NewService(uow store.UnitOfWork, engine fsrs.Engine, opts ...Option) Service {
	if uow == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("uow cannot be nil")
	}
	if engine == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("engine cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &serviceImpl{
		uow:    uow,
		engine: engine,
		opts:   o,
		logger: o.logger.With(slog.String("component", "scheduler_service")),
	}
}

// GetNext implements Service.GetNext.
func (s *serviceImpl) GetNext(
	ctx context.Context,
	now time.Time,
	deckID uuid.UUID,
	allowNew bool,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("deck_id", deckID.String()))

	deck, err := s.deckConfig(ctx, s.uow, deckID)
	if err != nil {
		return domain.Card{}, err
	}

	var counts store.DailyCounts
	if deck.NewCardsPerDay != nil || deck.ReviewsPerDay != nil {
		since := StudyDayStart(now, s.opts.dayStartHour, s.opts.location)
		counts, err = s.uow.ReviewLogs().CountSince(ctx, deckID, since)
		if err != nil {
			log.Error("failed to count today's reviews", slog.String("error", err.Error()))
			return domain.Card{}, NewServiceError("get_next", "failed to count today's reviews", err)
		}
	}

	if !deck.ReviewQuotaExhausted(counts.Review) {
		card, ok, err := s.pickReview(ctx, deck, now)
		if err != nil {
			log.Error("failed to list due reviews", slog.String("error", err.Error()))
			return domain.Card{}, NewServiceError("get_next", "failed to list due reviews", err)
		}
		if ok {
			s.opts.metrics.RecordSelection(selectionReview)
			log.Debug("selected review card", slog.String("card_id", card.ID.String()))
			return card, nil
		}
	} else {
		log.Debug("review quota exhausted", slog.Int("reviews_today", counts.Review))
	}

	if allowNew && !deck.NewQuotaExhausted(counts.New) {
		card, err := s.uow.Cards().GetOldestNew(ctx, deckID)
		switch {
		case err == nil:
			s.opts.metrics.RecordSelection(selectionNew)
			log.Debug("selected new card", slog.String("card_id", card.ID.String()))
			return card, nil
		case !errors.Is(err, store.ErrNotFound):
			log.Error("failed to get oldest new card", slog.String("error", err.Error()))
			return domain.Card{}, NewServiceError("get_next", "failed to get new card", err)
		}
	}

	s.opts.metrics.RecordSelection(selectionNone)
	log.Debug("no cards due")
	return domain.Card{}, ErrNoCardsDue
}

// pickReview selects one due Review card according to the deck's review order.
func (s *serviceImpl) pickReview(
	ctx context.Context,
	deck *domain.DeckSchedulingConfig,
	now time.Time,
) (domain.Card, bool, error) {
	limit := 1
	if deck.ReviewOrder == domain.ReviewOrderRandom {
		limit = s.opts.randomCandidate
	}

	due, err := s.uow.Cards().ListDueReviews(ctx, deck.DeckID, now, limit)
	if err != nil || len(due) == 0 {
		return domain.Card{}, false, err
	}

	if deck.ReviewOrder == domain.ReviewOrderRandom {
		return due[s.opts.rng.IntN(len(due))], true, nil
	}
	return due[0], true, nil
}

// Preview implements Service.Preview.
func (s *serviceImpl) Preview(ctx context.Context, cardID uuid.UUID, now time.Time) (fsrs.Preview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", cardID.String()))

	card, err := s.uow.Cards().GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fsrs.Preview{}, ErrCardNotFound
		}
		log.Error("failed to get card", slog.String("error", err.Error()))
		return fsrs.Preview{}, NewServiceError("preview", "failed to get card", err)
	}

	deck, err := s.deckConfig(ctx, s.uow, card.DeckID)
	if err != nil {
		return fsrs.Preview{}, err
	}

	cfg, err := fsrs.ConfigForDeck(deck)
	if err != nil {
		return fsrs.Preview{}, NewServiceError("preview", "invalid deck configuration", err)
	}

	return s.engine.Preview(card, now, cfg)
}

// Rate implements Service.Rate.
func (s *serviceImpl) Rate(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.Rating,
	now time.Time,
	timeSpentMs int64,
) (domain.Card, error) {
	start := time.Now()
	defer func() { s.opts.metrics.ObserveRateDuration(time.Since(start)) }()

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("card_id", cardID.String()),
		slog.String("rating", string(rating)))

	if !rating.IsValid() {
		s.opts.metrics.RecordRateFailure(failureInvalid)
		return domain.Card{}, fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}
	if timeSpentMs < 0 {
		s.opts.metrics.RecordRateFailure(failureInvalid)
		return domain.Card{}, ErrInvalidTimeSpent
	}

	var (
		updated domain.Card
		profile domain.ProfileName
	)
	err := s.uow.RunInTransaction(ctx, func(ctx context.Context, uow store.UnitOfWork) error {
		card, err := uow.Cards().GetByIDForUpdate(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCardNotFound
			}
			return err
		}

		deck, err := uow.Decks().GetConfig(ctx, card.DeckID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrDeckNotFound
			}
			return err
		}

		cfg, err := fsrs.ConfigForDeck(deck)
		if err != nil {
			return NewServiceError("rate", "invalid deck configuration", err)
		}

		outcome, err := s.engine.Update(card, rating, now, cfg)
		if err != nil {
			return NewServiceError("rate", "failed to apply rating", err)
		}

		entry := &domain.ReviewLogEntry{
			ID:               uuid.New(),
			CardID:           card.ID,
			DeckID:           card.DeckID,
			Rating:           rating,
			Before:           card.Snapshot(),
			After:            outcome.Card.Snapshot(),
			ElapsedDays:      outcome.ElapsedDays,
			Retrievability:   outcome.Retrievability,
			RequestRetention: cfg.RequestRetention(),
			Profile:          cfg.Profile().Name(),
			WeightsVersion:   cfg.Profile().Version(),
			TimeSpentMs:      timeSpentMs,
			ReviewedAt:       now,
		}

		if err := uow.Cards().Update(ctx, outcome.Card); err != nil {
			return err
		}
		if err := uow.ReviewLogs().Append(ctx, entry); err != nil {
			return err
		}

		updated = outcome.Card
		profile = cfg.Profile().Name()
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		switch {
		case errors.Is(err, ErrNotFound):
			s.opts.metrics.RecordRateFailure(failureNotFound)
			log.Warn("rating target not found", slog.String("error", err.Error()))
		case errors.As(err, &svcErr):
			s.opts.metrics.RecordRateFailure(failureConfig)
			log.Error("failed to rate card", slog.String("error", err.Error()))
		default:
			s.opts.metrics.RecordRateFailure(failureStorage)
			log.Error("failed to persist rating", slog.String("error", err.Error()))
		}
		return domain.Card{}, err
	}

	s.opts.metrics.RecordRating(string(rating), string(profile))
	log.Debug("rated card",
		slog.Float64("stability", updated.Stability),
		slog.Float64("difficulty", updated.Difficulty),
		slog.Float64("interval_minutes", updated.IntervalMinutes),
		slog.Time("due_at", updated.DueAt))

	return updated, nil
}

// PeekDue implements Service.PeekDue.
func (s *serviceImpl) PeekDue(
	ctx context.Context,
	now time.Time,
	deckID uuid.UUID,
	limit int,
) ([]domain.Card, error) {
	if _, err := s.deckConfig(ctx, s.uow, deckID); err != nil {
		return nil, err
	}

	cards, err := s.uow.Cards().ListDueReviews(ctx, deckID, now, limit)
	if err != nil {
		return nil, NewServiceError("peek_due", "failed to list due reviews", err)
	}
	return cards, nil
}

// TimeToNext implements Service.TimeToNext.
func (s *serviceImpl) TimeToNext(
	ctx context.Context,
	now time.Time,
	deckID uuid.UUID,
) (time.Duration, bool, error) {
	if _, err := s.deckConfig(ctx, s.uow, deckID); err != nil {
		return 0, false, err
	}

	next, ok, err := s.uow.Cards().NextDueAt(ctx, deckID)
	if err != nil {
		return 0, false, NewServiceError("time_to_next", "failed to get next due date", err)
	}
	if !ok {
		return 0, false, nil
	}

	if wait := next.Sub(now); wait > 0 {
		return wait, true, nil
	}
	return 0, true, nil
}

// deckConfig loads a deck configuration, translating a missing deck into
// ErrDeckNotFound.
func (s *serviceImpl) deckConfig(
	ctx context.Context,
	uow store.UnitOfWork,
	deckID uuid.UUID,
) (*domain.DeckSchedulingConfig, error) {
	deck, err := uow.Decks().GetConfig(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, NewServiceError("get_deck_config", "failed to get deck configuration", err)
	}
	return deck, nil
}
