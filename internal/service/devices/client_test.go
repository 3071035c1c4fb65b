package devices

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://homeassistant.local:8123", true},
		{"http://homeassistant:8123", true},
		{"http://localhost:8123", true},
		{"http://192.168.1.50:8123", true},
		{"http://10.0.0.7", true},
		{"http://172.16.4.2:8123", true},
		{"https://abc123.ui.nabu.casa", true},
		{"https://myhome.duckdns.org", true},
		{"http://172.32.0.1", false},
		{"https://example.com", false},
		{"http://8.8.8.8", false},
		{"ftp://homeassistant.local", false},
		{"not a url at all ://", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidURL(tt.url); got != tt.want {
			t.Errorf("ValidURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  abc123  ", "abc123"},
		{`"abc123"`, "abc123"},
		{"'abc123'", "abc123"},
		{"Bearer abc123", "abc123"},
		{` "Bearer abc123" `, "abc123"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(2*time.Second, log)
}

func TestConnectFetchesInventory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/":
			w.Write([]byte(`{"message":"API running."}`))
		case "/api/states":
			w.Write([]byte(`[
				{"entity_id":"light.kitchen"},
				{"entity_id":"light.hallway"},
				{"entity_id":"switch.boiler"},
				{"entity_id":"sensor.temp"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	inv, err := newTestClient(t).Connect(context.Background(), srv.URL+"/", "good-token")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if inv.Total != 4 {
		t.Errorf("Total = %d, want 4", inv.Total)
	}
	if inv.ByDomain["light"] != 2 || inv.ByDomain["switch"] != 1 || inv.ByDomain["sensor"] != 1 {
		t.Errorf("ByDomain = %v", inv.ByDomain)
	}

	summary := inv.Summary()
	if !strings.Contains(summary, "4 devices") || !strings.Contains(summary, "light: 2") {
		t.Errorf("Summary = %q", summary)
	}
}

func TestConnectBadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t).Connect(context.Background(), srv.URL, "bad-token")
	if err == nil {
		t.Fatal("expected error for rejected token")
	}
	if !strings.Contains(err.Error(), "token") {
		t.Errorf("error should name the token: %v", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	_, err := newTestClient(t).Connect(context.Background(), "http://127.0.0.1:1", "token")
	if err == nil {
		t.Fatal("expected error for unreachable bridge")
	}
}
