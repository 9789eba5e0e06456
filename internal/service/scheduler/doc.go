// Package scheduler decides which card of a deck to study next and records
// ratings.
//
// The service is stateless. It borrows stores from a store.UnitOfWork on every
// call and delegates the memory model to an fsrs.Engine, so the same instance can
// serve any number of concurrent requests. Writes for a single card are
// serialized by the row lock taken in Rate.
//
// Daily quotas are counted from the review log since the start of the current
// study day, which begins at a configurable local hour (see WithStudyDay).
package scheduler
