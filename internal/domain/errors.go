// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a rating label is not one of again, hard, good, easy.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidCardState is returned when a card state is not new or review.
	ErrInvalidCardState = errors.New("invalid card state")

	// ErrInvalidProfileName is returned when a profile name is not part of the closed set.
	ErrInvalidProfileName = errors.New("invalid profile name")

	// ErrInvalidReviewOrder is returned when a deck review order is unknown.
	ErrInvalidReviewOrder = errors.New("invalid review order")
)
