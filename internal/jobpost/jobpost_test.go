package jobpost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><title>Jobs</title></head><body><h2>Go Engineer</h2><p>Build mail tooling.</p></body></html>`))
	}))
	defer srv.Close()

	text, err := Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lowered := strings.ToLower(text)
	if !strings.Contains(lowered, "go engineer") || !strings.Contains(lowered, "build mail tooling") {
		t.Fatalf("unexpected extracted text: %q", text)
	}
	if strings.Contains(text, "<") {
		t.Fatalf("markup leaked into the text: %q", text)
	}
	if !strings.Contains(gotAgent, "breadfinder") {
		t.Fatalf("expected the custom user agent, got %q", gotAgent)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected an error for a 404 response")
	}
}

func TestFetchEmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := Fetch(context.Background(), "  "); err == nil {
		t.Fatalf("expected an error for an empty url")
	}
}

func TestFetchNoVisibleText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><script>var x;</script></head><body></body></html>`))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected an error for a page without visible text")
	}
}
