package hostfunc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPBlockedWhenNoHosts(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: nil})
	_, err := h.Request(context.Background(), map[string]any{"url": "https://example.com"})
	if err == nil || err.Error() != "http not enabled" {
		t.Errorf("expected 'http not enabled', got %v", err)
	}
}

func TestHTTPBlockedForUnallowedHost(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"api.openai.com"}})
	_, err := h.Request(context.Background(), map[string]any{"url": "https://evil.com"})
	if err == nil || err.Error() != "host not allowed: evil.com" {
		t.Errorf("expected 'host not allowed', got %v", err)
	}
}

func TestHTTPBypassQueryParam(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"api.openai.com"}})
	_, err := h.Request(context.Background(), map[string]any{"url": "https://evil.com/?x=api.openai.com"})
	if err == nil || err.Error() != "host not allowed: evil.com" {
		t.Errorf("query param bypass should be blocked, got %v", err)
	}
}

func TestHTTPBypassSubdomainSuffix(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"allowed.com"}})
	_, err := h.Request(context.Background(), map[string]any{"url": "https://allowed.com.evil.com/"})
	if err == nil || err.Error() != "host not allowed: allowed.com.evil.com" {
		t.Errorf("subdomain suffix bypass should be blocked, got %v", err)
	}
}

func TestHTTPRejectsBadScheme(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"allowed.com"}})
	_, err := h.Request(context.Background(), map[string]any{"url": "ftp://allowed.com/x"})
	if err == nil || err.Error() != "scheme must be http or https" {
		t.Errorf("expected scheme error, got %v", err)
	}
}

func TestHTTPPostToAllowedHost(t *testing.T) {
	var gotBody string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(200)
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"127.0.0.1"}})
	result, err := h.Request(context.Background(), map[string]any{
		"method":  "POST",
		"url":     server.URL,
		"body":    `{"model":"gpt-4o-mini"}`,
		"headers": map[string]any{"Authorization": "Bearer sk-test"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := result.(map[string]any)
	if data["status"].(int) != 200 {
		t.Errorf("expected status 200, got %v", data["status"])
	}
	if data["body"].(string) != `{"choices":[]}` {
		t.Errorf("unexpected body: %v", data["body"])
	}
	if gotBody != `{"model":"gpt-4o-mini"}` {
		t.Errorf("server saw body %q", gotBody)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("server saw auth %q", gotAuth)
	}
}

func TestHTTPUnsupportedMethod(t *testing.T) {
	h := NewHTTP(HTTPConfig{AllowedHosts: []string{"allowed.com"}})
	_, err := h.Request(context.Background(), map[string]any{"method": "TRACE", "url": "https://allowed.com"})
	if err == nil || err.Error() != "unsupported method: TRACE" {
		t.Errorf("expected method error, got %v", err)
	}
}
