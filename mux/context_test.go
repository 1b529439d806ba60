package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVars(t *testing.T) {
	t.Run("returns nil for request without vars", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, Vars(r))
	})

	t.Run("returns vars from request context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = setRouteContext(r, nil, map[string]string{"file": "index.html"})
		assert.Equal(t, map[string]string{"file": "index.html"}, Vars(r))
	})
}

func TestVarGet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := VarGet(r, "file")
	assert.False(t, ok)

	r = SetURLVars(r, map[string]string{"file": ""})
	val, ok := VarGet(r, "file")
	assert.True(t, ok)
	assert.Empty(t, val)
}

func TestSetURLVars(t *testing.T) {
	t.Run("keeps current route", func(t *testing.T) {
		route := &Route{}
		r := setRouteContext(httptest.NewRequest(http.MethodGet, "/", nil), route, nil)
		r = SetURLVars(r, map[string]string{"key": "value"})

		require.NotNil(t, CurrentRoute(r))
		assert.Same(t, route, CurrentRoute(r))
		assert.Equal(t, "value", Vars(r)["key"])
	})

	t.Run("overwrites existing vars", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = SetURLVars(r, map[string]string{"a": "1"})
		r = SetURLVars(r, map[string]string{"b": "2"})
		assert.Equal(t, map[string]string{"b": "2"}, Vars(r))
	})
}

func TestResponseRaw(t *testing.T) {
	t.Run("sets content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		ResponseRaw(w, http.StatusOK, "text/css", []byte("body{}"))
		assert.Equal(t, "text/css", w.Header().Get("Content-Type"))
		assert.Equal(t, "body{}", w.Body.String())
	})

	t.Run("empty content type leaves header unset", func(t *testing.T) {
		w := httptest.NewRecorder()
		ResponseRaw(w, http.StatusOK, "", []byte("x"))
		assert.Empty(t, w.Header().Get("Content-Type"))
		assert.Equal(t, "x", w.Body.String())
	})
}

func TestResponseJSON(t *testing.T) {
	w := httptest.NewRecorder()
	ResponseJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
