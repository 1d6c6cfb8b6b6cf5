package api

import (
	"github.com/St1cky1/user-service/internal/api/handlers"
	"github.com/St1cky1/user-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(userService *usecase.UserService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	userHandler := handlers.NewUserHandler(userService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)
				r.Get("/image", userHandler.GetImage)
				r.Put("/image", userHandler.UpdateImage)
				r.Get("/audit", userHandler.GetAuditTrail)
			})
		})
	})

	return r
}
