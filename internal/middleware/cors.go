package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for
// allowedOrigins. Each entry must be a full origin (scheme + host, no
// trailing slash). The actor header is allowed so browser clients behind the
// authenticating proxy can send it.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", ActorHeader},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
