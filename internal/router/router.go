// Package router sets up all HTTP routes and middleware chains for the
// Kartela API. Reads are public; every write goes through the admin group.
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kartela/internal/auth"
	"kartela/internal/handlers"
	"kartela/internal/middleware"
)

// loginRateLimit is the number of login attempts allowed per client IP
// per minute.
const loginRateLimit = 10

// Options carries the handler groups and HTTP settings.
type Options struct {
	Tokens  *auth.Manager
	Catalog *handlers.Catalog
	Auth    *handlers.Auth
	Media   *handlers.Media
	Preview *handlers.Preview
	Health  http.HandlerFunc

	CORSAllowedOrigins []string
	HSTS               bool

	// ProcessImageRateLimit caps process-image and compare requests per
	// client IP per minute, each route counted separately. Zero disables
	// the limit.
	ProcessImageRateLimit int

	// UploadDir is served at UploadPublicPath when set. Leave it empty when
	// uploads live in object storage.
	UploadDir        string
	UploadPublicPath string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(o Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(o.HSTS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{handlers.MockHeader, "X-Cache"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	if o.UploadDir != "" {
		prefix := "/" + strings.Trim(o.UploadPublicPath, "/")
		fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(o.UploadDir)))
		r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
			// Directory listings are not part of the public surface.
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=86400")
			fs.ServeHTTP(w, r)
		})
	}

	adminOnly := []func(http.Handler) http.Handler{
		middleware.Authenticate(o.Tokens),
		middleware.RequireAdmin,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", o.Health)

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginRateLimit, time.Minute)).Post("/login", o.Auth.Login)
			r.With(middleware.OptionalAuthenticate(o.Tokens)).Post("/register", o.Auth.Register)
			r.With(middleware.Authenticate(o.Tokens)).Get("/me", o.Auth.Me)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", o.Catalog.ListCategories)
			r.Get("/{id}", o.Catalog.GetCategory)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", o.Catalog.CreateCategory)
				r.Put("/{id}", o.Catalog.UpdateCategory)
				r.Delete("/{id}", o.Catalog.DeleteCategory)
			})
		})

		// Brands
		r.Route("/brands", func(r chi.Router) {
			r.Get("/", o.Catalog.ListBrands)
			r.Get("/{id}", o.Catalog.GetBrand)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", o.Catalog.CreateBrand)
				r.Put("/{id}", o.Catalog.UpdateBrand)
				r.Delete("/{id}", o.Catalog.DeleteBrand)
			})
		})

		// Palettes
		r.Route("/palettes", func(r chi.Router) {
			r.Get("/", o.Catalog.ListPalettes)
			r.Get("/{id}", o.Catalog.GetPalette)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", o.Catalog.CreatePalette)
				r.Put("/{id}", o.Catalog.UpdatePalette)
				r.Delete("/{id}", o.Catalog.DeletePalette)
				r.Post("/{id}/test-webhook", o.Catalog.TestWebhook)
			})
		})

		// Settings and WhatsApp contact
		r.Get("/settings/whatsapp", o.Catalog.GetWhatsAppSettings)
		r.With(adminOnly...).Put("/settings/whatsapp", o.Catalog.UpdateWhatsAppSettings)
		r.Get("/whatsapp/link", o.Catalog.WhatsAppLink)
		r.Get("/whatsapp/qr.png", o.Catalog.WhatsAppQR)

		// Uploads
		r.Route("/upload", func(r chi.Router) {
			r.Use(adminOnly...)
			r.Get("/", o.Media.ListUploads)
			r.Post("/", o.Media.Upload)
		})

		// Customer preview flow
		r.Post("/photo", o.Media.Photo)
		r.With(middleware.RateLimit(o.ProcessImageRateLimit, time.Minute)).Post("/process-image", o.Preview.ProcessImage)
		r.With(middleware.RateLimit(o.ProcessImageRateLimit, time.Minute)).Post("/compare", o.Preview.Compare)
	})

	return r
}
