package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUserAgentIsSet(t *testing.T) {
	t.Parallel()
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(time.Second, "go-retrokit/test")
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	_ = resp.Body.Close()
	if ua := <-got; ua != "go-retrokit/test" {
		t.Fatalf("unexpected user agent: %q", ua)
	}
}

func TestNewDownloaderHasNoOverallTimeout(t *testing.T) {
	t.Parallel()
	client := NewDownloader(5*time.Second, "")
	if client.Timeout != 0 {
		t.Fatalf("expected no overall timeout, got %s", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.ResponseHeaderTimeout != 5*time.Second {
		t.Fatalf("unexpected header timeout: %s", transport.ResponseHeaderTimeout)
	}
}
