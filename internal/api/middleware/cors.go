package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the dashboard frontend. Content-Disposition is
// exposed so the browser can name CSV downloads, and Cache-Control so event streams are
// readable cross-origin.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Cache-Control",
		},
		ExposedHeaders:   []string{"Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
