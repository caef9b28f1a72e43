package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return newLogger(io.Discard, slog.LevelInfo)
}

func TestJSONLDHandlerCanHandle(t *testing.T) {
	h := &JSONLDHandler{}
	tests := []struct {
		source, contentType string
		want                bool
	}{
		{"https://example.com/a", "application/ld+json", true},
		{"https://example.com/a", "application/json; charset=utf-8", true},
		{"meta.JSONLD", "", true},
		{"meta.json", "", true},
		{"https://example.com/a", "text/html", false},
		{"page.html", "", false},
	}
	for _, tt := range tests {
		if got := h.CanHandle(tt.source, tt.contentType); got != tt.want {
			t.Errorf("CanHandle(%q, %q) = %v, want %v", tt.source, tt.contentType, got, tt.want)
		}
	}
}

func TestHTMLHandlerKeepsDocument(t *testing.T) {
	h := &HTMLHandler{logger: discardLogger()}
	if !h.CanHandle("anything", "") {
		t.Error("HTMLHandler should accept every source")
	}

	doc, err := h.Handle("page.html", strings.NewReader(articlePage))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if doc.Source != "page.html" {
		t.Errorf("Source = %q", doc.Source)
	}
	if doc.HTML.Find("#card").Length() != 1 {
		t.Error("container missing from parsed document")
	}
	if len(doc.Records) != 1 {
		t.Errorf("records = %d, want 1", len(doc.Records))
	}
}

func TestJSONLDHandlerReadError(t *testing.T) {
	h := &JSONLDHandler{logger: discardLogger()}
	if _, err := h.Handle("meta.jsonld", failingReader{}); err == nil {
		t.Error("Handle() should report read errors")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }
