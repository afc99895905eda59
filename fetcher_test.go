package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Mock handler for testing
type mockHandler struct {
	canHandleResult bool
	handleResult    string
	handleError     error
}

func (m *mockHandler) CanHandle(url string, resp *http.Response) bool {
	return m.canHandleResult
}

func (m *mockHandler) Handle(url string, resp *http.Response) (string, error) {
	return m.handleResult, m.handleError
}

func TestNewContentFetcher(t *testing.T) {
	fetcher := NewContentFetcher(30*time.Second, zap.NewNop())

	if fetcher == nil {
		t.Fatal("NewContentFetcher() returned nil")
	}
	if fetcher.client == nil {
		t.Error("NewContentFetcher() did not initialize HTTP client")
	}

	expectedHandlerCount := 2 // PDF, HTML
	if len(fetcher.handlers) != expectedHandlerCount {
		t.Errorf("NewContentFetcher() registered %d handlers, want %d",
			len(fetcher.handlers), expectedHandlerCount)
	}
}

func TestAddHandler(t *testing.T) {
	fetcher := &ContentFetcher{}
	fetcher.AddHandler(&mockHandler{canHandleResult: true})

	if len(fetcher.handlers) != 1 {
		t.Errorf("AddHandler() handlers count = %d, want 1", len(fetcher.handlers))
	}
}

func TestFetchContentHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<p>PhD position in glaciology at the institute.</p>
			<p>Deadline 9 June 2025. Three positions available.</p>
		</body></html>`))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(5*time.Second, zap.NewNop())
	text, err := fetcher.FetchContent(server.URL)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}

	for _, want := range []string{"PhD position in glaciology", "Deadline 9 June 2025"} {
		if !strings.Contains(text, want) {
			t.Errorf("FetchContent() missing %q in:\n%s", want, text)
		}
	}
}

func TestFetchContentSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(5*time.Second, zap.NewNop())
	if _, err := fetcher.FetchContent(server.URL); err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if gotAgent != fetchUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotAgent, fetchUserAgent)
	}
}

func TestFetchContentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewContentFetcher(5*time.Second, zap.NewNop())
	_, err := fetcher.FetchContent(server.URL)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("FetchContent() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
}

func TestFetchContentHandlerDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	fetcher := &ContentFetcher{client: server.Client()}
	fetcher.AddHandler(&mockHandler{canHandleResult: false, handleResult: "wrong handler"})
	fetcher.AddHandler(&mockHandler{canHandleResult: true, handleResult: "right handler"})

	text, err := fetcher.FetchContent(server.URL)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if text != "right handler" {
		t.Errorf("FetchContent() = %q, dispatched to the wrong handler", text)
	}
}

func TestFetchContentNoHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	fetcher := &ContentFetcher{client: server.Client()}
	if _, err := fetcher.FetchContent(server.URL); err == nil {
		t.Error("FetchContent() with no matching handler must fail")
	}
}
