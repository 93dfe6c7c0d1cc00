package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dollaghosh1/wbpower-project/internal/auth"
	"github.com/dollaghosh1/wbpower-project/internal/handler"
	mw "github.com/dollaghosh1/wbpower-project/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Tables    *handler.TableHandler
	Records   *handler.RecordHandler
	Files     *handler.FileHandler
	Dashboard *handler.DashboardHandler
}

func New(jwtSecret, corsOrigin string, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(corsOrigin))

	// Stored uploads are public, as they were under the site's public folder
	r.Get("/uploads/*", h.Files.Serve)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/dashboard", h.Dashboard.Dashboard)

			// Dynamic tables
			r.Get("/dynamic-tables", h.Tables.List)
			r.Post("/dynamic-tables", h.Tables.Create)
			r.Get("/dynamic-tables/{table}/fields", h.Tables.Fields)
			r.Get("/dynamic-tables/{table}/columns", h.Tables.Columns)

			// Records
			r.Get("/dynamic-tables/{table}/records", h.Records.List)
			r.Post("/dynamic-tables/{table}/records", h.Records.Create)
			r.Get("/dynamic-tables/{table}/records/{id}", h.Records.Get)
			r.Put("/dynamic-tables/{table}/records/{id}", h.Records.Update)
			r.Post("/dynamic-tables/{table}/records/{id}", h.Records.Update)
			r.Delete("/dynamic-tables/{table}/records/{id}", h.Records.Delete)
			r.Put("/dynamic-tables/{table}/records/{id}/status", h.Records.SetStatus)
		})
	})

	return r
}
