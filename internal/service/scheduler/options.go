package scheduler

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/platform/metrics"
)

// DefaultRandomCandidateLimit caps how many due cards random ordering draws from.
const DefaultRandomCandidateLimit = 500

// RandomSource supplies the draws used by random review order.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// NewSeededSource returns a deterministic RandomSource that is safe for
// concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed))}
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// globalSource draws from the runtime-seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Option configures the service.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	metrics         *metrics.Metrics
	rng             RandomSource
	dayStartHour    int
	location        *time.Location
	randomCandidate int
}

func defaultOptions() options {
	return options{
		logger:          slog.Default(),
		rng:             globalSource{},
		location:        time.UTC,
		randomCandidate: DefaultRandomCandidateLimit,
	}
}

// WithLogger sets the service logger. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRandomSource sets the source used for random review order.
func WithRandomSource(r RandomSource) Option {
	return func(o *options) {
		if r != nil {
			o.rng = r
		}
	}
}

// WithStudyDay sets the hour and time zone at which a study day begins.
// Daily quotas count ratings given since the start of the current study day.
func WithStudyDay(hour int, loc *time.Location) Option {
	return func(o *options) {
		if hour >= 0 && hour < 24 {
			o.dayStartHour = hour
		}
		if loc != nil {
			o.location = loc
		}
	}
}

// WithRandomCandidateLimit caps the number of due cards loaded for random order.
func WithRandomCandidateLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.randomCandidate = n
		}
	}
}

// StudyDayStart returns the start of the study day containing now: the most
// recent instant at or before now where the local clock in loc reads hour:00.
func StudyDayStart(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if start.After(local) {
		start = time.Date(local.Year(), local.Month(), local.Day()-1, hour, 0, 0, 0, loc)
	}
	return start
}
