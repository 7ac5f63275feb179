/**
 * @description
 * This file sets up the HTTP router for the vendor service using the go-chi/chi router.
 * It applies middleware for logging, recovery, timeouts, CORS, metrics and session
 * resolution, and maps the Resource API, auth endpoints and UI pages to handlers.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS handling for browser clients on other origins.
 */
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sumamakhan761/vendor-management/internal/app"
	"github.com/sumamakhan761/vendor-management/internal/config"
	"github.com/sumamakhan761/vendor-management/internal/web"
	"github.com/sumamakhan761/vendor-management/pkg/metrics"
	"github.com/sumamakhan761/vendor-management/pkg/middleware"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, vendors *app.VendorService, auth *app.AuthService, ui *web.Handler, recorder *metrics.Recorder) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))
	if recorder != nil {
		r.Use(recorder.Middleware)
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})
	if recorder != nil {
		r.Method(http.MethodGet, "/metrics", recorder.Handler())
	}

	vendorHandler := NewVendorHandler(vendors)
	authHandler := NewAuthHandler(auth, cfg.SessionCookieSecure)

	// Everything below resolves the caller's session; handlers decide whether it is required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth, cfg.AllowHeaderFallback))

		r.Route("/api/vendors", func(r chi.Router) {
			r.Get("/", vendorHandler.ListVendors)
			r.Post("/", vendorHandler.CreateVendor)
			r.Put("/{id}", vendorHandler.UpdateVendor)
			r.Delete("/{id}", vendorHandler.DeleteVendor)
		})

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/google", authHandler.SignInWithGoogle)
			r.Get("/session", authHandler.GetSession)
			r.Post("/signout", authHandler.SignOut)
		})

		if ui != nil {
			r.Get("/", ui.Index)
			r.Get("/login", ui.Login)
			r.Get("/static/*", ui.Static)
		}
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if ui == nil || isAPIPath(req.URL.Path) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
			return
		}
		ui.NotFound(w, req)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	return r
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
