package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/api/middleware"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/service/scheduler"
	"github.com/phrazzld/scry-scheduler/internal/store"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockScheduler is a testify mock of scheduler.Service.
type mockScheduler struct {
	mock.Mock
}

var _ scheduler.Service = (*mockScheduler)(nil)

func (m *mockScheduler) GetNext(ctx context.Context, now time.Time, deckID uuid.UUID, allowNew bool) (domain.Card, error) {
	args := m.Called(ctx, now, deckID, allowNew)
	return args.Get(0).(domain.Card), args.Error(1)
}

func (m *mockScheduler) Preview(ctx context.Context, cardID uuid.UUID, now time.Time) (fsrs.Preview, error) {
	args := m.Called(ctx, cardID, now)
	return args.Get(0).(fsrs.Preview), args.Error(1)
}

func (m *mockScheduler) Rate(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.Rating,
	now time.Time,
	timeSpentMs int64,
) (domain.Card, error) {
	args := m.Called(ctx, cardID, rating, now, timeSpentMs)
	return args.Get(0).(domain.Card), args.Error(1)
}

func (m *mockScheduler) PeekDue(ctx context.Context, now time.Time, deckID uuid.UUID, limit int) ([]domain.Card, error) {
	args := m.Called(ctx, now, deckID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *mockScheduler) TimeToNext(ctx context.Context, now time.Time, deckID uuid.UUID) (time.Duration, bool, error) {
	args := m.Called(ctx, now, deckID)
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

// mockCardStore implements only the CardStore methods the handlers use.
type mockCardStore struct {
	store.CardStore
	mock.Mock
}

func (m *mockCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *mockCardStore) WithTx(*sql.Tx) store.CardStore { return m }

type mockDeckStore struct {
	store.DeckStore
	mock.Mock
}

func (m *mockDeckStore) GetConfig(ctx context.Context, deckID uuid.UUID) (*domain.DeckSchedulingConfig, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeckSchedulingConfig), args.Error(1)
}

// newTestRouter wires handlers the way the server does, with a fixed clock.
func newTestRouter(svc scheduler.Service, cards store.CardStore, decks store.DeckStore) *chi.Mux {
	sched := NewSchedulerHandler(svc, testLogger())
	sched.now = func() time.Time { return fixedNow }

	fc := NewForecastHandler(cards, decks, ForecastSettings{DefaultDays: 30, MaxDays: 365}, testLogger())
	fc.now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(testLogger()))
	RegisterRoutes(r, sched, fc)
	return r
}

func sampleCard(deckID uuid.UUID) domain.Card {
	return domain.Card{
		ID:              uuid.New(),
		DeckID:          deckID,
		State:           domain.CardStateReview,
		Stability:       4.2,
		Difficulty:      5.5,
		IntervalMinutes: 6048,
		Repetitions:     3,
		DueAt:           fixedNow.Add(-time.Hour),
		LastReviewedAt:  fixedNow.Add(-5 * 24 * time.Hour),
		CreatedAt:       fixedNow.Add(-20 * 24 * time.Hour),
		UpdatedAt:       fixedNow.Add(-5 * 24 * time.Hour),
	}
}
