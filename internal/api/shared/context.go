package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

// traceIDKey is the context key of the request trace ID.
type traceIDKey struct{}

// TraceIDLength is the number of random bytes in a generated trace ID.
const TraceIDLength = 16 // 32 hex characters

// TraceIDHeader carries a caller-supplied trace ID and echoes the one in use.
const TraceIDHeader = "X-Trace-ID"

// validTraceID restricts caller-supplied IDs to a safe, loggable alphabet.
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{8,64}$`)

// WithTraceID stores id in the context. An empty or malformed id is replaced by
// a freshly generated one.
func WithTraceID(ctx context.Context, id string) context.Context {
	if !validTraceID.MatchString(id) {
		id = generateTraceID()
	}
	return context.WithValue(ctx, traceIDKey{}, id)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}

// generateTraceID returns 32 random hex characters, falling back to a random
// UUID if the system source fails.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}
