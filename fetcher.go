package main

import (
	"fmt"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"go.uber.org/zap"
)

// Some opportunity pages refuse requests without a browser user agent.
const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ContentFetcher fetches a URL and extracts plain text using a handler chain.
type ContentFetcher struct {
	handlers []ContentHandler
	client   *http.Client
}

// NewContentFetcher creates a fetcher with the default handlers, most
// specific first.
func NewContentFetcher(timeout time.Duration, logger *zap.Logger) *ContentFetcher {
	f := &ContentFetcher{
		client: &http.Client{Timeout: timeout},
	}

	f.AddHandler(&PDFHandler{logger: logger})
	f.AddHandler(&HTMLHandler{converter: md.NewConverter("", true, nil), logger: logger}) // fallback

	return f
}

// AddHandler adds a content handler to the chain
func (f *ContentFetcher) AddHandler(handler ContentHandler) {
	f.handlers = append(f.handlers, handler)
}

// FetchContent fetches the URL and extracts its text using the handler chain.
func (f *ContentFetcher) FetchContent(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	for _, handler := range f.handlers {
		if handler.CanHandle(url, resp) {
			return handler.Handle(url, resp)
		}
	}

	return "", fmt.Errorf("no handler found for %s", url)
}
