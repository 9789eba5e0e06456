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

const cardColumns = `id, deck_id, state, stability, difficulty, interval_minutes,
	repetitions, lapses, due_at, last_reviewed_at, created_at, updated_at`

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
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

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

// WithTx implements store.CardStore.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c            domain.Card
		state        string
		lastReviewed sql.NullTime
	)

	err := row.Scan(
		&c.ID, &c.DeckID, &state, &c.Stability, &c.Difficulty, &c.IntervalMinutes,
		&c.Repetitions, &c.Lapses, &c.DueAt, &lastReviewed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}

	c.State = domain.CardState(state)
	if lastReviewed.Valid {
		c.LastReviewedAt = lastReviewed.Time
	}
	return c, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Create implements store.CardStore.
func (s *PostgresCardStore) Create(ctx context.Context, card domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		card.ID, card.DeckID, string(card.State), card.Stability, card.Difficulty, card.IntervalMinutes,
		card.Repetitions, card.Lapses, card.DueAt, nullTime(card.LastReviewedAt), card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.CardStore.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	card, err := scanCard(row)
	if err != nil {
		return domain.Card{}, mapEntityError(err, store.ErrCardNotFound, nil)
	}
	return card, nil
}

// GetByIDForUpdate implements store.CardStore.
func (s *PostgresCardStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
	card, err := scanCard(row)
	if err != nil {
		return domain.Card{}, mapEntityError(err, store.ErrCardNotFound, nil)
	}
	return card, nil
}

// Update implements store.CardStore.
func (s *PostgresCardStore) Update(ctx context.Context, card domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET state = $2, stability = $3, difficulty = $4, interval_minutes = $5,
		    repetitions = $6, lapses = $7, due_at = $8, last_reviewed_at = $9, updated_at = $10
		WHERE id = $1`,
		card.ID, string(card.State), card.Stability, card.Difficulty, card.IntervalMinutes,
		card.Repetitions, card.Lapses, card.DueAt, nullTime(card.LastReviewedAt), card.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// ListDueReviews implements store.CardStore.
func (s *PostgresCardStore) ListDueReviews(
	ctx context.Context,
	deckID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.Card, error) {
	// LIMIT NULL is LIMIT ALL.
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	return s.queryCards(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE deck_id = $1 AND state = 'review' AND due_at <= $2
		ORDER BY due_at ASC, last_reviewed_at ASC NULLS FIRST, id ASC
		LIMIT $3`,
		deckID, now, limitArg,
	)
}

// GetOldestNew implements store.CardStore.
func (s *PostgresCardStore) GetOldestNew(ctx context.Context, deckID uuid.UUID) (domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE deck_id = $1 AND state = 'new'
		ORDER BY created_at ASC, id ASC
		LIMIT 1`,
		deckID,
	)
	card, err := scanCard(row)
	if err != nil {
		return domain.Card{}, mapEntityError(err, store.ErrCardNotFound, nil)
	}
	return card, nil
}

// NextDueAt implements store.CardStore.
func (s *PostgresCardStore) NextDueAt(ctx context.Context, deckID uuid.UUID) (time.Time, bool, error) {
	var next sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(due_at) FROM cards WHERE deck_id = $1 AND state = 'review'`, deckID,
	).Scan(&next)
	if err != nil {
		return time.Time{}, false, MapError(err)
	}
	return next.Time, next.Valid, nil
}

// ListByDeck implements store.CardStore.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE deck_id = $1 ORDER BY created_at ASC, id ASC`,
		deckID,
	)
}

func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []domain.Card
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
