package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aktagon/ldcard/jsonld"
)

const defaultFetchTimeout = 30 * time.Second

// Document is a fetched source with its decoded JSON-LD records
type Document struct {
	Source  string
	Records []jsonld.Record
	HTML    *goquery.Document // nil for raw JSON-LD sources
}

// DocumentFetcher loads sources from URLs or local files
type DocumentFetcher struct {
	handlers []ContentHandler
	client   *http.Client
}

// NewDocumentFetcher creates a new fetcher with default handlers
func NewDocumentFetcher(logger *slog.Logger) *DocumentFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &DocumentFetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}

	// Register handlers (most specific first)
	f.AddHandler(&JSONLDHandler{logger: logger})
	f.AddHandler(&HTMLHandler{logger: logger}) // fallback

	return f
}

// AddHandler adds a content handler to the chain
func (f *DocumentFetcher) AddHandler(handler ContentHandler) {
	f.handlers = append(f.handlers, handler)
}

// FetchDocument loads a source and decodes it using the handler chain
func (f *DocumentFetcher) FetchDocument(ctx context.Context, source string) (*Document, error) {
	if isURL(source) {
		return f.fetchURL(ctx, source)
	}
	return f.readFile(source)
}

func (f *DocumentFetcher) fetchURL(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	return f.handle(url, resp.Header.Get("Content-Type"), resp.Body)
}

func (f *DocumentFetcher) readFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return f.handle(path, "", file)
}

// handle finds the first handler accepting the source
func (f *DocumentFetcher) handle(source, contentType string, body io.Reader) (*Document, error) {
	for _, handler := range f.handlers {
		if handler.CanHandle(source, contentType) {
			return handler.Handle(source, body)
		}
	}
	return nil, fmt.Errorf("no handler found for %s", source)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
