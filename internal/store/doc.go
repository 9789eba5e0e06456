// Package store defines the persistence interfaces of the scheduler.
//
// Cards, deck scheduling configurations and the append-only review log are
// reached through CardStore, DeckStore and ReviewLogStore. A UnitOfWork groups
// the three so that a rating's card write and log append commit together.
// Implementations live in internal/platform/postgres.
package store
