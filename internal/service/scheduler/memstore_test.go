package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// memState is the data behind the in-memory unit of work.
type memState struct {
	cards map[uuid.UUID]domain.Card
	decks map[uuid.UUID]domain.DeckSchedulingConfig
	logs  []domain.ReviewLogEntry
}

func (s *memState) clone() *memState {
	return &memState{
		cards: maps.Clone(s.cards),
		decks: maps.Clone(s.decks),
		logs:  slices.Clone(s.logs),
	}
}

// memUnitOfWork is an in-memory store.UnitOfWork. A transaction works on a copy
// of the state that replaces the committed state only when fn succeeds.
type memUnitOfWork struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool

	// failures injected per operation name, e.g. "append".
	fail map[string]error
	// txCount is the number of committed or rolled-back transactions.
	txCount *int
}

var _ store.UnitOfWork = (*memUnitOfWork)(nil)

func newMemUnitOfWork() *memUnitOfWork {
	return &memUnitOfWork{
		mu: &sync.Mutex{},
		state: &memState{
			cards: map[uuid.UUID]domain.Card{},
			decks: map[uuid.UUID]domain.DeckSchedulingConfig{},
		},
		fail:    map[string]error{},
		txCount: new(int),
	}
}

func (u *memUnitOfWork) Cards() store.CardStore { return memCards{u} }
func (u *memUnitOfWork) Decks() store.DeckStore { return memDecks{u} }
func (u *memUnitOfWork) ReviewLogs() store.ReviewLogStore { return memLogs{u} }

func (u *memUnitOfWork) RunInTransaction(ctx context.Context, fn store.UnitFn) error {
	if u.inTx {
		return fn(ctx, u)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	*u.txCount++

	tx := &memUnitOfWork{mu: u.mu, state: u.state.clone(), inTx: true, fail: u.fail, txCount: u.txCount}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := u.fail["commit"]; err != nil {
		return err
	}
	*u.state = *tx.state
	return nil
}

func (u *memUnitOfWork) failure(op string) error { return u.fail[op] }

func (u *memUnitOfWork) putCard(c domain.Card) { u.state.cards[c.ID] = c }

func (u *memUnitOfWork) putDeck(d domain.DeckSchedulingConfig) { u.state.decks[d.DeckID] = d }

type memCards struct{ u *memUnitOfWork }

func (m memCards) Create(_ context.Context, card domain.Card) error {
	if _, ok := m.u.state.cards[card.ID]; ok {
		return store.ErrDuplicate
	}
	m.u.state.cards[card.ID] = card
	return nil
}

func (m memCards) GetByID(_ context.Context, id uuid.UUID) (domain.Card, error) {
	if err := m.u.failure("get_card"); err != nil {
		return domain.Card{}, err
	}
	card, ok := m.u.state.cards[id]
	if !ok {
		return domain.Card{}, store.ErrCardNotFound
	}
	return card, nil
}

func (m memCards) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	return m.GetByID(ctx, id)
}

func (m memCards) Update(_ context.Context, card domain.Card) error {
	if err := m.u.failure("update_card"); err != nil {
		return err
	}
	if _, ok := m.u.state.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	m.u.state.cards[card.ID] = card
	return nil
}

func (m memCards) ListDueReviews(_ context.Context, deckID uuid.UUID, now time.Time, limit int) ([]domain.Card, error) {
	if err := m.u.failure("list_due"); err != nil {
		return nil, err
	}
	var due []domain.Card
	for _, c := range m.u.state.cards {
		if c.DeckID == deckID && c.State == domain.CardStateReview && c.IsDue(now) {
			due = append(due, c)
		}
	}
	slices.SortFunc(due, func(a, b domain.Card) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		if c := a.LastReviewedAt.Compare(b.LastReviewedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m memCards) GetOldestNew(_ context.Context, deckID uuid.UUID) (domain.Card, error) {
	var (
		oldest domain.Card
		found  bool
	)
	for _, c := range m.u.state.cards {
		if c.DeckID != deckID || c.State != domain.CardStateNew {
			continue
		}
		if !found || c.CreatedAt.Before(oldest.CreatedAt) {
			oldest, found = c, true
		}
	}
	if !found {
		return domain.Card{}, store.ErrCardNotFound
	}
	return oldest, nil
}

func (m memCards) NextDueAt(_ context.Context, deckID uuid.UUID) (time.Time, bool, error) {
	var (
		next  time.Time
		found bool
	)
	for _, c := range m.u.state.cards {
		if c.DeckID != deckID || c.State != domain.CardStateReview {
			continue
		}
		if !found || c.DueAt.Before(next) {
			next, found = c.DueAt, true
		}
	}
	return next, found, nil
}

func (m memCards) ListByDeck(_ context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	var out []domain.Card
	for _, c := range m.u.state.cards {
		if c.DeckID == deckID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Card) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m memCards) WithTx(*sql.Tx) store.CardStore { return m }

type memDecks struct{ u *memUnitOfWork }

func (m memDecks) GetConfig(_ context.Context, deckID uuid.UUID) (*domain.DeckSchedulingConfig, error) {
	if err := m.u.failure("get_deck"); err != nil {
		return nil, err
	}
	deck, ok := m.u.state.decks[deckID]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

func (m memDecks) Upsert(_ context.Context, cfg *domain.DeckSchedulingConfig) error {
	m.u.state.decks[cfg.DeckID] = *cfg
	return nil
}

func (m memDecks) WithTx(*sql.Tx) store.DeckStore { return m }

type memLogs struct{ u *memUnitOfWork }

func (m memLogs) Append(_ context.Context, entry *domain.ReviewLogEntry) error {
	if err := m.u.failure("append"); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return errors.Join(store.ErrInvalidEntity, err)
	}
	m.u.state.logs = append(m.u.state.logs, *entry)
	return nil
}

func (m memLogs) CountSince(_ context.Context, deckID uuid.UUID, since time.Time) (store.DailyCounts, error) {
	if err := m.u.failure("count"); err != nil {
		return store.DailyCounts{}, err
	}
	var counts store.DailyCounts
	for _, e := range m.u.state.logs {
		if e.DeckID != deckID || e.ReviewedAt.Before(since) {
			continue
		}
		if e.Before.State == domain.CardStateNew {
			counts.New++
		} else {
			counts.Review++
		}
	}
	return counts, nil
}

func (m memLogs) ListByCard(_ context.Context, cardID uuid.UUID) ([]domain.ReviewLogEntry, error) {
	var out []domain.ReviewLogEntry
	for _, e := range m.u.state.logs {
		if e.CardID == cardID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memLogs) WithTx(*sql.Tx) store.ReviewLogStore { return m }
