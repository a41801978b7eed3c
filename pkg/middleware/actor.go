package middleware

import (
	"net/http"
	"strings"

	"tour-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// Actor reads the caller identity set by the gateway. Requests without the
// headers pass through anonymously; malformed headers are rejected.
func Actor(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := strings.TrimSpace(r.Header.Get(HeaderActorID))
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(rawID)
			if err != nil || id == uuid.Nil {
				logger.Warn("Invalid actor header", zap.String("actor_id", rawID), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid actor identity")
				return
			}

			role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))
			switch role {
			case "":
				role = utils.RoleTraveler
			case utils.RoleTraveler, utils.RoleOperator, utils.RoleAdmin:
			default:
				logger.Warn("Invalid actor role", zap.String("role", role), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid actor role")
				return
			}

			ctx := utils.SetActorContext(r.Context(), utils.Actor{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects anonymous requests.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetActorFromContext(r.Context()); !ok {
			utils.ResponseUnauthorized(w, "Actor identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
