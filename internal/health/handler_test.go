package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"hotelops/pkg/logger"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(_ context.Context, _ *readpref.ReadPref) error {
	return p.err
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(NewHandler(fakePinger{err: errors.New("down")}, logger.Discard()), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   int
		database string
	}{
		{"database reachable", nil, http.StatusOK, "ok"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(fakePinger{err: tt.pingErr}, logger.Discard()), "/ready")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.database, gjson.Get(rec.Body.String(), "database").String())
		})
	}
}
