package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the scheduler and forecast endpoints under /api.
func RegisterRoutes(r chi.Router, sched *SchedulerHandler, fc *ForecastHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/decks/{deckID}", func(r chi.Router) {
			r.Get("/next", sched.GetNext)
			r.Get("/due", sched.PeekDue)
			r.Get("/time-to-next", sched.TimeToNext)
			r.Get("/forecast", fc.DeckForecast)
		})

		r.Get("/cards/{id}/preview", sched.Preview)
		r.Post("/cards/{id}/review", sched.Review)

		r.Post("/forecast", fc.PostForecast)
	})
}
