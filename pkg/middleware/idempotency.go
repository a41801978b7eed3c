package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tour-marketplace/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replayed"

	idempotencyInFlight = "PROCESSING"
	idempotencyLockTTL  = 30 * time.Second
)

// storedResponse is what a finished request leaves behind under its key.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

func idempotencyKey(r *http.Request, key string) string {
	owner := "anonymous"
	if actor, ok := utils.GetActorFromContext(r.Context()); ok {
		owner = actor.ID.String()
	}
	return fmt.Sprintf("idempotency:%s:%s", owner, key)
}

// Idempotency replays the stored response when a POST repeats an
// Idempotency-Key, and answers 409 while the first request is still running.
// Server errors release the key so the client may retry. When Redis is
// unreachable the request is served without the guarantee.
func Idempotency(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderIdempotencyKey)
			if r.Method != http.MethodPost || header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(header) > 255 {
				utils.ResponseBadRequest(w, "Idempotency-Key is too long", nil)
				return
			}

			ctx := r.Context()
			key := idempotencyKey(r, header)

			val, err := client.Get(ctx, key).Result()
			switch {
			case err == nil:
				replay(w, val, logger)
				return
			case !errors.Is(err, redis.Nil):
				logger.Warn("Idempotency lookup failed", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := client.SetNX(ctx, key, idempotencyInFlight, idempotencyLockTTL).Result()
			if err != nil {
				logger.Warn("Idempotency lock failed", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				utils.ResponseConflict(w, "A request with this Idempotency-Key is already in progress", nil)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			// the client may be gone; the key must still be settled
			ctx = context.WithoutCancel(ctx)
			if cw.status >= http.StatusInternalServerError {
				if err := client.Del(ctx, key).Err(); err != nil {
					logger.Warn("Idempotency release failed", zap.Error(err), zap.String("key", key))
				}
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      cw.status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
			})
			if err != nil {
				logger.Error("Idempotency encode failed", zap.Error(err), zap.String("key", key))
				return
			}
			if err := client.Set(ctx, key, string(payload), ttl).Err(); err != nil {
				logger.Warn("Idempotency store failed", zap.Error(err), zap.String("key", key))
			}
		})
	}
}

func replay(w http.ResponseWriter, val string, logger *zap.Logger) {
	if val == idempotencyInFlight {
		utils.ResponseConflict(w, "A request with this Idempotency-Key is already in progress", nil)
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		logger.Error("Idempotency record unreadable", zap.Error(err))
		utils.ResponseConflict(w, "Idempotency-Key was already used", nil)
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(HeaderIdempotentReplay, "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}
