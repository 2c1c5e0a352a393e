package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hotelops/pkg/config"
	"hotelops/pkg/contracts"
	"hotelops/pkg/logger"
	"hotelops/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(t *testing.T, cfg *config.Config, handlers ...routes) *Application {
	t.Helper()
	health := routes(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	})

	a := NewApplication(cfg)
	domain := make([]contracts.Handler, 0, len(handlers))
	for _, h := range handlers {
		domain = append(domain, h)
	}
	a.SetApp(health, domain...)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestApplication_MountsEveryHandler(t *testing.T) {
	a := newTestApp(t, testConfig(),
		func(r *httprouter.Router) {
			r.GET("/api/v1/bookings/:id", func(w http.ResponseWriter, _ *http.Request, p httprouter.Params) {
				_, _ = w.Write([]byte(`{"data":{"id":"` + p.ByName("id") + `"}}`))
			})
		},
		func(r *httprouter.Router) {
			r.GET("/api/v1/rooms/:id/occupancy", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
				_, _ = w.Write([]byte(`{"data":{"occupied":true}}`))
			})
		},
	)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/b1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b1", gjson.Get(rec.Body.String(), "data.id").String())

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/rooms/r1/occupancy", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "data.occupied").Bool())
}

func TestApplication_DomainRoutesGetMiddleware(t *testing.T) {
	var calls atomic.Int32
	a := newTestApp(t, testConfig(), func(r *httprouter.Router) {
		r.POST("/api/v1/bookings", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			calls.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"b1"}}`))
		})
		r.GET("/api/v1/panic", func(http.ResponseWriter, *http.Request, httprouter.Params) {
			panic("boom")
		})
	})

	t.Run("content type enforced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := serve(a, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("idempotent replay", func(t *testing.T) {
		send := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Guest-Email", "alice@example.com")
			req.Header.Set(middleware.IdempotencyHeader, "key-1")
			return serve(a, req)
		}

		first := send()
		second := send()
		require.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("panics recovered", func(t *testing.T) {
		rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "INTERNAL_ERROR", gjson.Get(rec.Body.String(), "code").String())
	})
}

func TestApplication_RateLimitsPerGuest(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	a := newTestApp(t, cfg, func(r *httprouter.Router) {
		r.GET("/api/v1/me/bookings", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})
	})

	get := func(email string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me/bookings", nil)
		req.Header.Set("X-Guest-Email", email)
		return serve(a, req).Code
	}

	assert.Equal(t, http.StatusOK, get("alice@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, get("alice@example.com"))
	assert.Equal(t, http.StatusOK, get("bob@example.com"))
}
