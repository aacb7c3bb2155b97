package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/features/health"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, out
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	rec, response := serve(t, handler)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	if response.Status != "ok" {
		t.Errorf("status: got %q, want %q", response.Status, "ok")
	}
	if response.Database != "connected" {
		t.Errorf("database: got %q, want %q", response.Database, "connected")
	}
	if response.Redis != "" {
		t.Errorf("redis: expected omitted, got %q", response.Redis)
	}
}

func TestServe_RedisStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tests := []struct {
		name       string
		pinger     fakePinger
		wantStatus string
		wantRedis  string
	}{
		{"redis up", fakePinger{}, "ok", "connected"},
		{"redis down", fakePinger{err: errors.New("connection refused")}, "degraded", "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(db.Client(), tt.pinger, zap.NewNop())
			rec, resp := serve(t, h)
			if rec.Code != http.StatusOK {
				t.Errorf("status code: got %d, want 200", rec.Code)
			}
			if resp.Status != tt.wantStatus || resp.Redis != tt.wantRedis {
				t.Errorf("got status=%q redis=%q, want %q/%q", resp.Status, resp.Redis, tt.wantStatus, tt.wantRedis)
			}
		})
	}
}
