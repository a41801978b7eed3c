package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tour-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActor(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		id, role string
		status   int
		want     *utils.Actor
	}{
		{"anonymous", "", "", http.StatusOK, nil},
		{"defaults to traveler", id.String(), "", http.StatusOK, &utils.Actor{ID: id, Role: utils.RoleTraveler}},
		{"operator", id.String(), "Operator", http.StatusOK, &utils.Actor{ID: id, Role: utils.RoleOperator}},
		{"bad id", "nope", "", http.StatusUnauthorized, nil},
		{"bad role", id.String(), "root", http.StatusUnauthorized, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *utils.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if a, ok := utils.GetActorFromContext(r.Context()); ok {
					got = &a
				}
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.id != "" {
				r.Header.Set(HeaderActorID, tt.id)
			}
			if tt.role != "" {
				r.Header.Set(HeaderActorRole, tt.role)
			}
			rec := httptest.NewRecorder()
			Actor(zap.NewNop())(next).ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireActor(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	RequireActor(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(utils.SetActorContext(r.Context(), utils.Actor{ID: uuid.New(), Role: utils.RoleTraveler}))
	rec = httptest.NewRecorder()
	RequireActor(ok).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "req-42")
	rec = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, r)
	assert.Equal(t, "req-42", seen)
}

func TestRecover(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recover(zap.NewNop())(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CORS([]string{"https://app.example.com"})(next)

	r := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", HeaderIdempotencyKey)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/api/tours", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
