package api

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/api/shared"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/forecast"
	"github.com/phrazzld/scry-scheduler/internal/platform/metrics"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// ForecastSettings are the server-side defaults of forecast requests.
type ForecastSettings struct {
	DefaultDays  int
	MaxDays      int
	Distribution forecast.RatingDistribution
	// Config is used for posted snapshots that name no profile or retention.
	Config   fsrs.Config
	Location *time.Location
	Metrics  *metrics.Metrics
}

// ForecastHandler serves review-load forecasts.
type ForecastHandler struct {
	cards    store.CardStore
	decks    store.DeckStore
	settings ForecastSettings
	logger   *slog.Logger
	now      func() time.Time
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(
	cards store.CardStore,
	decks store.DeckStore,
	settings ForecastSettings,
	logger *slog.Logger,
) *ForecastHandler {
	if cards == nil || decks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card and deck stores cannot be nil for ForecastHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ForecastHandler")
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Config.IsZero() {
		settings.Config = fsrs.DefaultConfig()
	}

	return &ForecastHandler{
		cards:    cards,
		decks:    decks,
		settings: settings,
		logger:   logger.With(slog.String("component", "forecast_handler")),
		now:      time.Now,
	}
}

// DeckForecast handles GET /api/decks/{deckID}/forecast?days=N&seed=S.
func (h *ForecastHandler) DeckForecast(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	days, err := queryInt(r, "days", h.settings.DefaultDays, 1, h.settings.MaxDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	seed, ok, err := queryUint64(r, "seed")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !ok {
		seed = rand.Uint64()
	}

	deck, err := h.decks.GetConfig(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck")
		return
	}

	cfg, err := fsrs.ConfigForDeck(deck)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck")
		return
	}

	cards, err := h.cards.ListByDeck(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load cards")
		return
	}

	h.respond(w, r, forecast.FromDomain(cards), days, h.today(), seed, cfg, h.settings.Distribution)
}

// PostForecast handles POST /api/forecast for a caller-supplied snapshot.
func (h *ForecastHandler) PostForecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
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

	days := req.Days
	if days == 0 {
		days = h.settings.DefaultDays
	}
	if days > h.settings.MaxDays {
		HandleAPIError(w, r, &ParamError{Param: "days", Reason: "exceeds the maximum horizon"}, "")
		return
	}

	reference := h.today()
	if req.ReferenceDate != "" {
		// Already validated as YYYY-MM-DD.
		reference, _ = time.ParseInLocation(forecast.DateLayout, req.ReferenceDate, h.settings.Location)
	}

	cfg, err := h.requestConfig(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	dist := h.settings.Distribution
	if req.Distribution != nil {
		dist = *req.Distribution
		if err := dist.Validate(); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	h.respond(w, r, req.Cards, days, reference, seed, cfg, dist)
}

func (h *ForecastHandler) requestConfig(req ForecastRequest) (fsrs.Config, error) {
	if req.Profile == "" && req.RequestRetention == 0 {
		return h.settings.Config, nil
	}

	profile := h.settings.Config.Profile().Name()
	if req.Profile != "" {
		profile = domain.ProfileName(req.Profile)
	}
	retention := h.settings.Config.RequestRetention()
	if req.RequestRetention != 0 {
		retention = req.RequestRetention
	}
	return fsrs.NewConfig(profile, retention)
}

func (h *ForecastHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	cards []forecast.Card,
	days int,
	reference time.Time,
	seed uint64,
	cfg fsrs.Config,
	dist forecast.RatingDistribution,
) {
	loads, err := forecast.Run(r.Context(), cards, days, reference, rand.New(rand.NewPCG(seed, seed)), forecast.Options{
		Config:       cfg,
		Distribution: dist,
		Metrics:      h.settings.Metrics,
		Logger:       h.logger,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run forecast")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ForecastResponse{
		ReferenceDate: reference.Format(forecast.DateLayout),
		Seed:          seed,
		Days:          loads,
	})
}

func (h *ForecastHandler) today() time.Time {
	now := h.now().In(h.settings.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.settings.Location)
}
