package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"skirmish/internal/adapter/ws"
	"skirmish/internal/config"
)

func TestOpenStore_DefaultsToMemory(t *testing.T) {
	st, err := openStore(context.Background(), config.Server{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.close()
	if st.kind != "memory" || st.games == nil || st.log == nil || st.tx == nil {
		t.Fatalf("store mismatch: %+v", st)
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "games.db")
	st, err := openStore(context.Background(), config.Server{SQLitePath: path})
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.close()
	if st.kind != "sqlite" {
		t.Fatalf("kind mismatch: got=%q want=%q", st.kind, "sqlite")
	}
}

func TestObserverMux_RoutesObservePath(t *testing.T) {
	hub := ws.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(observerMux(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/observe")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status mismatch: got=%d want=%d", resp.StatusCode, http.StatusBadRequest)
	}

	resp, err = http.Get(srv.URL + "/other")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status mismatch: got=%d want=%d", resp.StatusCode, http.StatusNotFound)
	}
}
