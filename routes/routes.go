package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/senshuken/championship-system/handlers"
	"github.com/senshuken/championship-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	championshipHandler *handlers.ChampionshipHandler,
	answerHandler *handlers.AnswerHandler,
	interactionHandler *handlers.InteractionHandler,
	userHandler *handlers.UserHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"championship system api"}`))
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/championships", func(r chi.Router) {
		// Публичные маршруты для просмотра чемпионатов; токен необязателен
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth)

			r.Get("/", championshipHandler.List)
			r.Get("/{championshipID}", championshipHandler.GetByID)
			r.Get("/{championshipID}/answers", answerHandler.ListByChampionship)
		})

		// Защищенные маршруты
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Post("/", championshipHandler.Create)
			r.Put("/{championshipID}/force-end", championshipHandler.ForceEnd)
			r.Put("/{championshipID}/publish-result", championshipHandler.PublishResult)
			r.Post("/{championshipID}/answers", answerHandler.Create)
		})
	})

	router.Route("/answers", func(r chi.Router) {
		r.With(auth.OptionalAuth).Get("/{answerID}/comments", interactionHandler.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Post("/upload-url", answerHandler.GenerateUploadURL)
			r.Put("/{answerID}", answerHandler.Update)
			r.Put("/{answerID}/award", answerHandler.SetAward)
			r.Post("/{answerID}/like", interactionHandler.Like)
			r.Post("/{answerID}/comments", interactionHandler.CreateComment)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)
		r.Get("/{userID}/championships", userHandler.ListChampionships)
		r.Get("/{userID}/answers", userHandler.ListAnswers)

		r.With(auth.RequireAuth).Patch("/me", userHandler.UpdateMe)
	})
}
