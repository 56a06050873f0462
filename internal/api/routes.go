package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Public routes
	r.Get("/health", h.Health)
	r.Post("/auth/login", h.Login)

	// Protected routes (bearer token required)
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.auth))

		r.Post("/admin/change-login", h.ChangeLogin)

		r.Get("/meta/settings", h.GetSettings)
		r.Get("/meta/units", h.ListUnits)
		r.Get("/meta/locations", h.ListLocations)

		r.Get("/items", h.ListItems)
		r.Post("/items", h.CreateItem)
		r.Put("/items/{id}", h.UpdateItem)

		r.Post("/sync/push", h.SyncPush)
		r.Get("/sync/pull", h.SyncPull)

		r.Get("/inventory/onhand", h.OnHand)
	})

	return r
}
