package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// PostgresDeckStore implements store.DeckStore.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a deck store. If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// GetConfig implements store.DeckStore.
func (s *PostgresDeckStore) GetConfig(ctx context.Context, deckID uuid.UUID) (*domain.DeckSchedulingConfig, error) {
	var (
		cfg            domain.DeckSchedulingConfig
		profile, order string
		newPerDay      sql.NullInt32
		reviewsPerDay  sql.NullInt32
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, request_retention, profile, review_order, new_cards_per_day, reviews_per_day,
		       created_at, updated_at
		FROM decks
		WHERE id = $1`, deckID,
	).Scan(
		&cfg.DeckID, &cfg.RequestRetention, &profile, &order, &newPerDay, &reviewsPerDay,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, mapEntityError(err, store.ErrDeckNotFound, nil)
	}

	cfg.Profile = domain.ProfileName(profile)
	cfg.ReviewOrder = domain.ReviewOrder(order)
	cfg.NewCardsPerDay = intPtr(newPerDay)
	cfg.ReviewsPerDay = intPtr(reviewsPerDay)
	return &cfg, nil
}

// Upsert implements store.DeckStore.
func (s *PostgresDeckStore) Upsert(ctx context.Context, cfg *domain.DeckSchedulingConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (id, request_retention, profile, review_order, new_cards_per_day,
		                   reviews_per_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			request_retention = EXCLUDED.request_retention,
			profile = EXCLUDED.profile,
			review_order = EXCLUDED.review_order,
			new_cards_per_day = EXCLUDED.new_cards_per_day,
			reviews_per_day = EXCLUDED.reviews_per_day,
			updated_at = EXCLUDED.updated_at`,
		cfg.DeckID, cfg.RequestRetention, string(cfg.Profile), string(cfg.ReviewOrder),
		nullInt(cfg.NewCardsPerDay), nullInt(cfg.ReviewsPerDay), cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert deck config",
			slog.String("deck_id", cfg.DeckID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

func intPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func nullInt(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}
