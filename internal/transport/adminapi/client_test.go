package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meridian-cloud/meridian/internal/domain"
)

func TestLogin_StoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "admin" || req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":      "tok123",
			"username":   "admin",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	if err := c.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, ok := c.Session().Token()
	if !ok || token != "tok123" {
		t.Errorf("Token() = %q, %v", token, ok)
	}
	if c.Session().Username() != "admin" {
		t.Errorf("Username() = %q", c.Session().Username())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	err := c.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if _, ok := c.Session().Token(); ok {
		t.Error("session must stay empty after failed login")
	}
}

func TestVerify_ExpiredTokenClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	c.Session().Set("stale", "admin", time.Now().Add(time.Hour))

	err := c.Verify(context.Background())
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	if _, ok := c.Session().Token(); ok {
		t.Error("rejected token must be cleared")
	}
}

func TestVerify_WithoutSession(t *testing.T) {
	c := New("http://unused", nil, nil)
	if err := c.Verify(context.Background()); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
}

func TestExecute_RelaysReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["command"] != "GET fleet truck1" {
			t.Errorf("command = %q", req["command"])
		}
		_, _ = w.Write([]byte(`{"ok":true,"object":{"type":"Point","coordinates":[1,2]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	c.Session().Set("tok", "admin", time.Now().Add(time.Hour))

	raw, err := c.Execute(context.Background(), "GET fleet truck1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var env struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || !env.OK {
		t.Errorf("raw = %s", raw)
	}
}

func TestExecute_ProtocolErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"err":"key not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	c.Session().Set("tok", "admin", time.Now().Add(time.Hour))

	raw, err := c.Execute(context.Background(), "GET fleet nope")
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
	var pe *domain.ProtocolError
	if !errors.As(err, &pe) || pe.Message != "key not found" {
		t.Errorf("protocol error = %v", err)
	}
	if len(raw) == 0 {
		t.Error("raw reply must be returned alongside the error")
	}
}

func TestExecute_SessionExpiredMidFlight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	c.Session().Set("tok", "admin", time.Now().Add(time.Hour))

	_, err := c.Execute(context.Background(), "KEYS *")
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	if _, ok := c.Session().Token(); ok {
		t.Error("session must be cleared on 401")
	}
}

func TestSession_LocalExpiry(t *testing.T) {
	c := New("http://unused", nil, nil)
	c.Session().Set("tok", "admin", time.Now().Add(-time.Minute))
	if _, ok := c.Session().Token(); ok {
		t.Error("expired token must not be handed out")
	}
}

func TestExecute_TransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", nil, nil)
	c.Session().Set("tok", "admin", time.Now().Add(time.Hour))
	_, err := c.Execute(context.Background(), "KEYS *")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}
