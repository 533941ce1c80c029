package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
	})

	// routes behind bearer-token authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/auth/password", h.changePassword)

		r.Get("/api/snapshot", h.getSnapshot)
		r.Put("/api/snapshot", h.putSnapshot)

		r.Get("/api/backups", h.listBackups)
		r.Get("/api/backups/{backupID}", h.getBackup)
		r.Put("/api/backups/{backupID}", h.putBackup)
		r.Delete("/api/backups/{backupID}", h.deleteBackup)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
