package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoot_ReturnsGreeting(t *testing.T) {
	h := NewSystemHandler(true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	h.Root(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Hello from idman backend!" {
		t.Errorf("message = %q, want %q", got.Message, "Hello from idman backend!")
	}
}

func TestHello_ReturnsGreeting(t *testing.T) {
	h := NewSystemHandler(true)

	req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	w := httptest.NewRecorder()

	h.Hello(w, req)

	var got messageResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Hello from the backend API!" {
		t.Errorf("message = %q, want %q", got.Message, "Hello from the backend API!")
	}
}

func TestHealth_StoreConnected(t *testing.T) {
	h := NewSystemHandler(true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("status = %q, want %q", got.Status, "ok")
	}
	if got.Database != "connected" {
		t.Errorf("database = %q, want %q", got.Database, "connected")
	}
}

// データベース未接続でも/healthは200を返す。プロセス自体は稼働しているため。
func TestHealth_StoreDisconnected_Still200(t *testing.T) {
	h := NewSystemHandler(false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got healthResponse
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Database != "disconnected" {
		t.Errorf("database = %q, want %q", got.Database, "disconnected")
	}
}
