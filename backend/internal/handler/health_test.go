package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	h := &Handler{}

	req := httptest.NewRequest(http.MethodGet, "/health_check", nil)
	rr := httptest.NewRecorder()

	h.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("database available", func(t *testing.T) {
		h := &Handler{health: &MockHealthChecker{}}

		rr := httptest.NewRecorder()
		h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
	})

	t.Run("database unavailable", func(t *testing.T) {
		h := &Handler{health: &MockHealthChecker{
			PingFunc: func(ctx context.Context) error {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return errors.New("connection refused")
			},
		}}

		rr := httptest.NewRecorder()
		h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "database unavailable", rr.Body.String())
	})
}
