package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleHealth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("always returns healthy", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Checker{
			"broken": CheckFunc(func(context.Context) error { return errors.New("down") }),
		}, logger)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()

		handler.HandleHealth(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "healthy", data["status"])
		assert.NotEmpty(t, data["timestamp"])
	})
}

func TestHandleReadiness(t *testing.T) {
	logger := zap.NewNop()

	t.Run("healthy when every check passes", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Checker{
			"signing_keys": CheckFunc(func(context.Context) error { return nil }),
		}, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "healthy", data["status"])
		checks := data["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["signing_keys"])
	})

	t.Run("unhealthy when a check fails", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Checker{
			"signing_keys": CheckFunc(func(context.Context) error { return nil }),
			"upstream":     CheckFunc(func(context.Context) error { return errors.New("timeout") }),
		}, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "unhealthy", data["status"])
		checks := data["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["signing_keys"])
		assert.Equal(t, "unhealthy", checks["upstream"])
	})

	t.Run("checks run under a deadline", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Checker{
			"slow": CheckFunc(func(ctx context.Context) error {
				_, ok := ctx.Deadline()
				assert.True(t, ok)
				return nil
			}),
		}, logger)
		handler.timeout = 50 * time.Millisecond

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no checks is ready", func(t *testing.T) {
		handler := NewHealthHandler(nil, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
