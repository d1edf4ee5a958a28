package util

import (
	"net/http"
	"net/url"
	"testing"
)

func request(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return &http.Request{URL: u}
}

func TestNewProxyFunc_Configured(t *testing.T) {
	proxyFunc := NewProxyFunc("http://proxy:8080", "http://sproxy:8443", "")

	u, err := proxyFunc(request(t, "https://api.anthropic.com/v1/messages"))
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u == nil || u.Host != "sproxy:8443" {
		t.Errorf("expected https proxy, got %v", u)
	}

	u, err = proxyFunc(request(t, "http://localhost:11434/api/generate"))
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u == nil || u.Host != "proxy:8080" {
		t.Errorf("expected http proxy, got %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	proxyFunc := NewProxyFunc("http://proxy:8080", "", "localhost,internal.example.com")

	u, err := proxyFunc(request(t, "http://localhost:11434/api/generate"))
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected bypass for localhost, got %v", u)
	}

	u, err = proxyFunc(request(t, "http://svc.internal.example.com/api"))
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected bypass for subdomain, got %v", u)
	}
}
