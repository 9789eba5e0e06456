package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("failed to do something: %w", ErrNotFound), true},
		{"ErrCardNotFound", ErrCardNotFound, true},
		{"ErrDeckNotFound", ErrDeckNotFound, true},
		{"wrapped ErrReviewLogNotFound", fmt.Errorf("lookup: %w", ErrReviewLogNotFound), true},
		{"store error around ErrCardNotFound", NewStoreError("card", "get", "no rows", ErrCardNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFoundError(tc.err); got != tc.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	if !IsDuplicateError(ErrReviewLogExists) {
		t.Error("ErrReviewLogExists should be a duplicate error")
	}
	if IsDuplicateError(ErrCardNotFound) {
		t.Error("ErrCardNotFound should not be a duplicate error")
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("review_log", "append", "insert failed", cause)

	if want := "append operation on review_log failed: insert failed: connection reset"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("StoreError should unwrap to its cause")
	}

	var storeErr *StoreError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &storeErr) || storeErr.Entity != "review_log" {
		t.Error("errors.As should find the StoreError")
	}

	bare := NewStoreError("card", "update", "no fields", nil)
	if want := "update operation on card failed: no fields"; bare.Error() != want {
		t.Errorf("Error() = %q, want %q", bare.Error(), want)
	}
}
