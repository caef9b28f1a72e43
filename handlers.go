package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aktagon/ldcard/jsonld"
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ContentHandler turns a fetched body into a Document based on the source
// name and content type
type ContentHandler interface {
	CanHandle(source, contentType string) bool
	Handle(source string, body io.Reader) (*Document, error)
}

// JSONLDHandler handles raw JSON-LD documents
type JSONLDHandler struct {
	logger *slog.Logger
}

func (h *JSONLDHandler) CanHandle(source, contentType string) bool {
	if strings.Contains(contentType, "application/ld+json") || strings.Contains(contentType, "application/json") {
		return true
	}
	lower := strings.ToLower(source)
	return strings.HasSuffix(lower, ".jsonld") || strings.HasSuffix(lower, ".json")
}

func (h *JSONLDHandler) Handle(source string, body io.Reader) (*Document, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading JSON-LD body: %w", err)
	}
	return &Document{
		Source:  source,
		Records: jsonld.ParseBlocks([]string{string(data)}, h.logger.With("source", source)),
	}, nil
}

// HTMLHandler handles HTML pages with embedded JSON-LD blocks (fallback)
type HTMLHandler struct {
	logger *slog.Logger
}

func (h *HTMLHandler) CanHandle(source, contentType string) bool {
	return true // Always handles as fallback
}

func (h *HTMLHandler) Handle(source string, body io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	blocks := jsonld.ExtractBlocks(doc)
	return &Document{
		Source:  source,
		Records: jsonld.ParseBlocks(blocks, h.logger.With("source", source)),
		HTML:    doc,
	}, nil
}
