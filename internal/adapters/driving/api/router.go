package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Options configures the HTTP API.
type Options struct {
	// MaxUploadBytes rejects larger uploads.
	MaxUploadBytes int64

	// CORSOrigin is the allowed browser origin. Empty allows any.
	CORSOrigin string
}

// NewRouter mounts the API routes under /api.
func NewRouter(h *Handler, opts Options) http.Handler {
	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.ListDocuments)
			r.Post("/upload", h.Upload)
			r.Post("/search", h.Search)
			r.Get("/{id}", h.GetDocument)
			r.Delete("/{id}", h.DeleteDocument)
		})

		r.Get("/collections", h.ListCollections)

		if h.ports.Folder != nil {
			r.Route("/folders", func(r chi.Router) {
				r.Get("/", h.ListFolders)
				r.Post("/", h.CreateFolder)
				r.Get("/{id}", h.GetFolder)
				r.Put("/{id}", h.UpdateFolder)
				r.Delete("/{id}", h.DeleteFolder)
			})
		}
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d in %s [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
