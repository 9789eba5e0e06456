package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/api/shared"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/service/scheduler"
)

// Peek limits for GET /api/decks/{deckID}/due.
const (
	defaultPeekLimit = 20
	maxPeekLimit     = 1000
)

// SchedulerHandler serves card selection, previews and ratings.
type SchedulerHandler struct {
	scheduler scheduler.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewSchedulerHandler creates a SchedulerHandler.
func NewSchedulerHandler(svc scheduler.Service, logger *slog.Logger) *SchedulerHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler service cannot be nil for SchedulerHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SchedulerHandler")
	}

	return &SchedulerHandler{
		scheduler: svc,
		logger:    logger.With(slog.String("component", "scheduler_handler")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetNext handles GET /api/decks/{deckID}/next.
// It responds 204 when no card can be studied right now.
func (h *SchedulerHandler) GetNext(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	allowNew, err := queryBool(r, "allow_new", true)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.scheduler.GetNext(r.Context(), h.now(), deckID, allowNew)
	if errors.Is(err, scheduler.ErrNoCardsDue) {
		log.Debug("no cards due", slog.String("deck_id", deckID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PeekDue handles GET /api/decks/{deckID}/due?limit=N.
func (h *SchedulerHandler) PeekDue(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	limit, err := queryInt(r, "limit", defaultPeekLimit, 1, maxPeekLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.scheduler.PeekDue(r.Context(), h.now(), deckID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due cards")
		return
	}

	resp := DueCardsResponse{Count: len(cards), Cards: make([]CardResponse, len(cards))}
	for i, c := range cards {
		resp.Cards[i] = cardToResponse(c)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// TimeToNext handles GET /api/decks/{deckID}/time-to-next.
func (h *SchedulerHandler) TimeToNext(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	now := h.now()
	wait, ok, err := h.scheduler.TimeToNext(r.Context(), now, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute time to next card")
		return
	}

	resp := TimeToNextResponse{HasCards: ok}
	if ok {
		next := now.Add(wait)
		resp.Seconds = wait.Seconds()
		resp.NextDueAt = &next
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Preview handles GET /api/cards/{id}/preview.
func (h *SchedulerHandler) Preview(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	preview, err := h.scheduler.Preview(r.Context(), cardID, h.now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to preview card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, previewToResponse(cardID.String(), preview))
}

// Review handles POST /api/cards/{id}/review.
func (h *SchedulerHandler) Review(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.scheduler.Rate(r.Context(), cardID, domain.Rating(req.Rating), h.now(), req.TimeSpentMs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("rating", req.Rating),
		slog.Time("due_at", card.DueAt))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}
