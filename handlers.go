package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ContentHandler processes URLs based on response inspection
type ContentHandler interface {
	CanHandle(url string, resp *http.Response) bool
	Handle(url string, resp *http.Response) (string, error)
}

// failureMarkerPrefix distinguishes degraded extraction output from document
// text without forcing the caller to handle an error.
const failureMarkerPrefix = "[extraction failed"

func failureMarker(err error) string {
	return fmt.Sprintf("%s: %v]", failureMarkerPrefix, err)
}

// isFailureMarker reports whether fetched text is a failure marker rather
// than document content.
func isFailureMarker(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), failureMarkerPrefix)
}

// PDFHandler extracts plain text from PDF documents.
type PDFHandler struct {
	logger *zap.Logger
}

func (h *PDFHandler) CanHandle(url string, resp *http.Response) bool {
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/pdf") {
		return true
	}

	// A .pdf URL that the server relabels as HTML falls through to the HTML
	// handler.
	lower := strings.ToLower(url)
	looksPDF := strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, "/pdf/")
	return looksPDF && !strings.Contains(contentType, "text/html")
}

func (h *PDFHandler) Handle(url string, resp *http.Response) (string, error) {
	tempFile, err := os.CreateTemp("", "oppfill-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		return "", fmt.Errorf("downloading PDF content: %w", err)
	}
	tempFile.Close()

	file, reader, err := pdf.Open(tempFile.Name())
	if err != nil {
		h.logger.Warn("PDF could not be opened", zap.String("url", url), zap.Error(err))
		return failureMarker(err), nil
	}
	defer file.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		h.logger.Warn("PDF text extraction failed", zap.String("url", url), zap.Error(err))
		return failureMarker(err), nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("reading PDF text: %w", err)
	}

	text := cleanText(buf.String())
	h.logger.Debug("extracted PDF content",
		zap.String("url", url), zap.Int("chars", len(text)))
	return text, nil
}

// HTMLHandler extracts the main article content from HTML pages and flattens
// it to markdown text (fallback handler).
type HTMLHandler struct {
	converter *md.Converter
	logger    *zap.Logger
}

func (h *HTMLHandler) CanHandle(url string, resp *http.Response) bool {
	return true // always handles as fallback
}

func (h *HTMLHandler) Handle(url string, resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	// Readability strips navigation and boilerplate; when it finds nothing
	// the whole page is converted instead.
	html := string(body)
	if article, err := readability.FromReader(bytes.NewReader(body), nil); err == nil && article.Content != "" {
		html = article.Content
	}

	markdown, err := h.converter.ConvertString(html)
	if err != nil {
		h.logger.Warn("HTML conversion failed", zap.String("url", url), zap.Error(err))
		return failureMarker(err), nil
	}

	text := cleanText(markdown)
	h.logger.Debug("extracted HTML content",
		zap.String("url", url), zap.Int("chars", len(text)))
	return text, nil
}

// cleanText trims every line and drops blank ones.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
