package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", apiHandler.ListConversationsHandler)
				r.Get("/unread", apiHandler.UnreadHandler)
				r.Post("/seed", apiHandler.SeedHandler)
				r.Put("/{participantID}", apiHandler.EnsureConversationHandler)
				r.Get("/{participantID}/messages", apiHandler.GetMessagesHandler)
				r.Post("/{participantID}/messages", apiHandler.PostMessageHandler)
				r.Post("/{participantID}/read", apiHandler.MarkAsReadHandler)
			})
			r.Get("/events", apiHandler.EventsHandler)

			r.Get("/preferences", apiHandler.GetPreferencesHandler)
			r.Put("/preferences", apiHandler.PutPreferencesHandler)
			r.Delete("/preferences", apiHandler.DeletePreferencesHandler)

			r.Get("/compatibility/{userID}", apiHandler.CompatibilityHandler)
			r.Post("/compatibility/rank", apiHandler.RankHandler)
			r.Post("/compatibility/lifegraph", apiHandler.LifeGraphHandler)

			r.Post("/roommates/{userID}/like", apiHandler.LikeHandler)
			r.Delete("/roommates/{userID}/like", apiHandler.UnlikeHandler)
			r.Get("/roommates/likes", apiHandler.LikesHandler)
			r.Get("/roommates/matches", apiHandler.MatchesHandler)
		})
	})

	return r
}
