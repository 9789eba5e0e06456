package store

import (
	"context"
	"database/sql"
)

// UnitFn is the body of a unit of work. The UnitOfWork it receives is bound to
// the running transaction.
type UnitFn func(ctx context.Context, uow UnitOfWork) error

// UnitOfWork hands out the stores of the scheduler and groups their writes into
// one atomic transaction.
type UnitOfWork interface {
	Cards() CardStore
	Decks() DeckStore
	ReviewLogs() ReviewLogStore

	// RunInTransaction runs fn with stores bound to a single transaction. Either
	// every write made through them commits or none does. Calling it again on
	// the UnitOfWork passed to fn joins the running transaction.
	RunInTransaction(ctx context.Context, fn UnitFn) error
}

// SQLUnitOfWork is the database/sql implementation of UnitOfWork.
type SQLUnitOfWork struct {
	db    *sql.DB
	tx    *sql.Tx
	cards CardStore
	decks DeckStore
	logs  ReviewLogStore
}

var _ UnitOfWork = (*SQLUnitOfWork)(nil)

// NewSQLUnitOfWork combines pool-bound stores into a UnitOfWork.
func NewSQLUnitOfWork(db *sql.DB, cards CardStore, decks DeckStore, logs ReviewLogStore) *SQLUnitOfWork {
	if db == nil || cards == nil || decks == nil || logs == nil {
		// ALLOW-PANIC: Constructor enforcing required dependencies
		panic("store: NewSQLUnitOfWork requires a database and all three stores")
	}
	return &SQLUnitOfWork{db: db, cards: cards, decks: decks, logs: logs}
}

// Cards implements UnitOfWork.
func (u *SQLUnitOfWork) Cards() CardStore { return u.cards }

// Decks implements UnitOfWork.
func (u *SQLUnitOfWork) Decks() DeckStore { return u.decks }

// ReviewLogs implements UnitOfWork.
func (u *SQLUnitOfWork) ReviewLogs() ReviewLogStore { return u.logs }

// RunInTransaction implements UnitOfWork.
func (u *SQLUnitOfWork) RunInTransaction(ctx context.Context, fn UnitFn) error {
	if u.tx != nil {
		return fn(ctx, u)
	}

	return RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &SQLUnitOfWork{
			db:    u.db,
			tx:    tx,
			cards: u.cards.WithTx(tx),
			decks: u.decks.WithTx(tx),
			logs:  u.logs.WithTx(tx),
		})
	})
}
