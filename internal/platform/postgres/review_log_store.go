package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

const reviewLogColumns = `id, card_id, deck_id, rating,
	state_before, repetitions_before, lapses_before, stability_before, difficulty_before,
	interval_minutes_before, due_at_before,
	state_after, repetitions_after, lapses_after, stability_after, difficulty_after,
	interval_minutes_after, due_at_after,
	elapsed_days, retrievability, request_retention, profile, weights_version,
	time_spent_ms, reviewed_at`

// PostgresReviewLogStore implements store.ReviewLogStore. It only ever inserts;
// the table additionally rejects UPDATE with a trigger.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a review log store. If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewLogStore.
func (s *PostgresReviewLogStore) Append(ctx context.Context, e *domain.ReviewLogEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_logs (`+reviewLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23, $24, $25)`,
		e.ID, e.CardID, e.DeckID, string(e.Rating),
		string(e.Before.State), e.Before.Repetitions, e.Before.Lapses, e.Before.Stability, e.Before.Difficulty,
		e.Before.IntervalMinutes, e.Before.DueAt,
		string(e.After.State), e.After.Repetitions, e.After.Lapses, e.After.Stability, e.After.Difficulty,
		e.After.IntervalMinutes, e.After.DueAt,
		e.ElapsedDays, e.Retrievability, e.RequestRetention, string(e.Profile), e.WeightsVersion,
		e.TimeSpentMs, e.ReviewedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append review log entry",
			slog.String("card_id", e.CardID.String()),
			slog.String("error", err.Error()))
		return mapEntityError(err, nil, store.ErrReviewLogExists)
	}
	return nil
}

// CountSince implements store.ReviewLogStore.
func (s *PostgresReviewLogStore) CountSince(
	ctx context.Context,
	deckID uuid.UUID,
	since time.Time,
) (store.DailyCounts, error) {
	var counts store.DailyCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE state_before = 'new'),
			COUNT(*) FILTER (WHERE state_before = 'review')
		FROM review_logs
		WHERE deck_id = $1 AND reviewed_at >= $2`,
		deckID, since,
	).Scan(&counts.New, &counts.Review)
	if err != nil {
		return store.DailyCounts{}, MapError(err)
	}
	return counts, nil
}

// ListByCard implements store.ReviewLogStore.
func (s *PostgresReviewLogStore) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.ReviewLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewLogColumns+`
		FROM review_logs
		WHERE card_id = $1
		ORDER BY reviewed_at ASC, id ASC`, cardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.ReviewLogEntry
	for rows.Next() {
		var (
			e                              domain.ReviewLogEntry
			rating, before, after, profile string
		)
		err := rows.Scan(
			&e.ID, &e.CardID, &e.DeckID, &rating,
			&before, &e.Before.Repetitions, &e.Before.Lapses, &e.Before.Stability, &e.Before.Difficulty,
			&e.Before.IntervalMinutes, &e.Before.DueAt,
			&after, &e.After.Repetitions, &e.After.Lapses, &e.After.Stability, &e.After.Difficulty,
			&e.After.IntervalMinutes, &e.After.DueAt,
			&e.ElapsedDays, &e.Retrievability, &e.RequestRetention, &profile, &e.WeightsVersion,
			&e.TimeSpentMs, &e.ReviewedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		e.Rating = domain.Rating(rating)
		e.Before.State = domain.CardState(before)
		e.After.State = domain.CardState(after)
		e.Profile = domain.ProfileName(profile)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}
