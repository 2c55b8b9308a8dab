/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/auth/*             Login and logout
  /api/user-details/*     User-details record (wizard resource)
  /api/bank-details/*     Bank-details record (wizard resource)
  /api/leave_balances/*   Leave balance summary
  /api/all_leaves/*       Leave history
  /api/apply_leave        Leave application
  /api/payments/*         Payment history
  /api/documents/*        Document upload and listing
  /api/forms/*            Form definitions served to wizard clients
  /api/admin/*            Admin console (session with admin role)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/portal/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		// Updatable records served to the wizard
		r.Route("/user-details", func(r chi.Router) {
			r.Get("/{vendorID}", h.GetUserDetails)
			r.Put("/{vendorID}", h.UpdateUserDetails)
		})
		r.Route("/bank-details", func(r chi.Router) {
			r.Get("/{vendorID}", h.GetBankDetails)
			r.Put("/{vendorID}", h.UpdateBankDetails)
		})

		// Leave routes
		r.Get("/leave_balances/{employeeID}", h.GetLeaveBalances)
		r.Get("/all_leaves/{employeeID}", h.ListLeaves)
		r.Post("/apply_leave", h.ApplyLeave)

		// Payment history
		r.Get("/payments/{vendorID}", h.ListPayments)

		// Document slots
		r.Route("/documents", func(r chi.Router) {
			r.Get("/{employeeID}", h.ListDocuments)
			r.Post("/{employeeID}", h.UploadDocuments)
			r.Get("/{employeeID}/{docType}", h.DownloadDocument)
		})

		// Form definitions
		r.Get("/forms/{formID}", h.GetForm)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireRole("admin"))
			r.Get("/requests", h.ListUpdateRequests)
			r.Post("/requests/{id}/approve", h.ApproveUpdateRequest)
			r.Post("/requests/{id}/reject", h.RejectUpdateRequest)
			r.Get("/payments/export", h.ExportPayments)
		})
	})

	return r
}
