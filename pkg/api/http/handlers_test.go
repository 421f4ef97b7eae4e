package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	storagememory "github.com/ebarrios-ai/trivium/pkg/adapters/storage/memory"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, history *storagememory.HistoryStore) *Server {
	t.Helper()

	return NewServer(&Config{
		Port:    0,
		History: history,
		Logger:  zap.NewNop(),
	})
}

func TestHandleListHistory(t *testing.T) {
	history := storagememory.NewHistoryStore()
	s := newTestServer(t, history)

	session := &domain.Session{
		ID:        "s1",
		Query:     "what happened",
		Status:    domain.ExecutionStatusSuccess,
		Timestamp: time.Now(),
	}
	if err := history.SaveSession(t.Context(), session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Sessions []domain.Session `json:"sessions"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Count != 1 || len(body.Sessions) != 1 {
		t.Fatalf("count = %d, sessions = %d, want 1 each", body.Count, len(body.Sessions))
	}
	if body.Sessions[0].ID != "s1" {
		t.Errorf("session id = %q, want s1", body.Sessions[0].ID)
	}
}

func TestHandleGetHistoryNotFound(t *testing.T) {
	s := newTestServer(t, storagememory.NewHistoryStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history/absent", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteHistory(t *testing.T) {
	history := storagememory.NewHistoryStore()
	s := newTestServer(t, history)

	if err := history.SaveSession(t.Context(), &domain.Session{ID: "s1"}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/history/s1", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/history/s1", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleExecuteRejectsMissingQuery(t *testing.T) {
	s := newTestServer(t, storagememory.NewHistoryStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/execute",
		strings.NewReader(`{"context":{"text":"no query"}}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error.Code != "INVALID_REQUEST" {
		t.Errorf("error code = %q, want INVALID_REQUEST", body.Error.Code)
	}
}
