package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHealthAndReady(t *testing.T) {
	storeErr := error(nil)
	g := gin.New()
	RegisterHealth(g, map[string]Check{
		"storage": func(context.Context) error { return storeErr },
		"queue":   func(context.Context) error { return nil },
	})

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	storeErr = errors.New("mongo down")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "not_ready", body.Status)
	require.False(t, body.Deps["storage"])
	require.True(t, body.Deps["queue"])
}
