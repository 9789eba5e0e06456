// Package domain contains the core scheduling entities: cards, deck scheduling
// configuration, ratings and the append-only review log. It has no knowledge of
// storage or transport and is shared by the engine, the scheduler service and
// the forecast simulator.
package domain
