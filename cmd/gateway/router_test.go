package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter(t *testing.T) {
	var commands, updates int
	command := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		commands++
		w.WriteHeader(http.StatusOK)
	})
	telegram := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		updates++
		w.WriteHeader(http.StatusNoContent)
	})

	h := newRouter(command, telegram)

	tests := []struct {
		method, path string
		exp          int
	}{
		{http.MethodPost, "/command", http.StatusOK},
		{http.MethodPost, "/telegram", http.StatusNoContent},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
		if rec.Code != tt.exp {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.exp, rec.Code)
		}
	}
	if commands != 1 || updates != 1 {
		t.Errorf("expected one command and one update, got %d and %d", commands, updates)
	}
}

func TestRouterWithoutTelegram(t *testing.T) {
	h := newRouter(http.NotFoundHandler(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
