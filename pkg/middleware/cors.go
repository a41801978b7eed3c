package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS applies the configured allowed origins. A single "*" allows any
// origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", HeaderActorID, HeaderActorRole, HeaderIdempotencyKey, HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, HeaderIdempotentReplay},
		MaxAge:         300,
	})
	return c.Handler
}
