package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Port != 18765 {
		t.Errorf("Expected port 18765, got %d", config.Port)
	}

	if config.ReadTimeout != 10*time.Second {
		t.Errorf("Expected ReadTimeout 10s, got %v", config.ReadTimeout)
	}

	if config.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected ShutdownTimeout 5s, got %v", config.ShutdownTimeout)
	}
}

func TestStartStop(t *testing.T) {
	config := DefaultConfig()
	config.Port = 0 // Use random port
	server := New(config, nil)

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	if !server.IsRunning() {
		t.Error("Expected server to be running")
	}

	if server.Port() == 0 {
		t.Error("Expected non-zero port")
	}

	// Try to start again (should fail)
	if err := server.Start(); err == nil {
		t.Error("Expected error when starting already running server")
	}

	if err := server.Stop(); err != nil {
		t.Errorf("Failed to stop server: %v", err)
	}

	if server.IsRunning() {
		t.Error("Expected server to be stopped")
	}

	// Stop again (should succeed, no-op)
	if err := server.Stop(); err != nil {
		t.Errorf("Expected no error when stopping already stopped server: %v", err)
	}

	if err := server.Start(); err == nil {
		t.Error("Expected error when restarting a stopped server")
	}
}

func TestURL(t *testing.T) {
	config := DefaultConfig()
	config.Port = 12345
	server := New(config, nil)

	expectedURL := "http://127.0.0.1:12345"
	if server.URL() != expectedURL {
		t.Errorf("Expected URL %s, got %s", expectedURL, server.URL())
	}
}

func TestRoutesRegisteredBeforeStart(t *testing.T) {
	config := DefaultConfig()
	config.Port = 0
	server := New(config, nil)

	server.GetMux().HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	resp, err := http.Get(server.URL() + "/api/ping")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantAllow  string
		wantStatus int
	}{
		{"preflight from localhost", http.MethodOptions, "http://localhost:3000", "http://localhost:3000", http.StatusOK},
		{"get from loopback", http.MethodGet, "http://127.0.0.1:8080", "http://127.0.0.1:8080", http.StatusTeapot},
		{"foreign origin", http.MethodGet, "http://localhost.evil.com", "", http.StatusTeapot},
		{"no origin", http.MethodGet, "", "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://127.0.0.1/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Expected allow origin %q, got %q", tt.wantAllow, got)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestStatusStream(t *testing.T) {
	config := DefaultConfig()
	config.Port = 0
	server := New(config, nil)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	wsURL := "ws" + strings.TrimPrefix(server.URL(), "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	// registration is asynchronous; keep broadcasting until the frame arrives
	got := make(chan Message, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if json.Unmarshal(data, &msg) == nil {
			got <- msg
		}
	}()

	deadline := time.After(3 * time.Second)
	for {
		server.Hub().Broadcast(Message{Type: MessageTypeStatus, Data: map[string]string{"status": "busy"}})
		select {
		case msg := <-got:
			if msg.Type != MessageTypeStatus {
				t.Errorf("Expected %s message, got %s", MessageTypeStatus, msg.Type)
			}
			data, _ := msg.Data.(map[string]interface{})
			if data["status"] != "busy" {
				t.Errorf("Expected busy status, got %v", msg.Data)
			}
			return
		case <-deadline:
			t.Fatal("No message received on the status stream")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestIsLocalOrigin(t *testing.T) {
	tests := map[string]bool{
		"http://localhost":          true,
		"http://localhost:18765":    true,
		"http://127.0.0.1:1":        true,
		"http://localhost.evil.com": false,
		"https://example.com":       false,
	}
	for origin, want := range tests {
		if got := isLocalOrigin(origin); got != want {
			t.Errorf("isLocalOrigin(%q): expected %v, got %v", origin, want, got)
		}
	}
}
