package jsonld

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScriptSelector matches the script elements carrying JSON-LD.
const ScriptSelector = `script[type="application/ld+json"]`

// ExtractBlocks returns the text of every JSON-LD script in document order.
func ExtractBlocks(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}
	var blocks []string
	doc.Find(ScriptSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return blocks
}

// ParseBlocks decodes each block into records. A block that fails to decode
// is logged and skipped; the others are still processed. Top-level arrays
// contribute each object element, and an object with @graph contributes
// itself followed by its graph members.
func ParseBlocks(blocks []string, logger *slog.Logger) []Record {
	if logger == nil {
		logger = slog.Default()
	}

	var records []Record
	for i, block := range blocks {
		var value any
		if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &value); err != nil {
			logger.Warn("could not parse JSON-LD block", "index", i, "error", err)
			continue
		}
		records = appendRecords(records, value)
	}
	return records
}

func appendRecords(records []Record, value any) []Record {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if rec, ok := asRecord(item); ok {
				records = append(records, rec)
			}
		}
		return records
	}

	rec, ok := asRecord(value)
	if !ok {
		return records
	}
	records = append(records, rec)

	graph, ok := rec[KeyGraph].([]any)
	if !ok {
		return records
	}
	for _, item := range graph {
		member, ok := asRecord(item)
		if !ok {
			continue
		}
		if _, has := member[KeyContext]; !has && rec[KeyContext] != nil {
			member = withContext(member, rec[KeyContext])
		}
		records = append(records, member)
	}
	return records
}

// withContext returns a shallow copy of rec inheriting the container's
// @context, leaving the decoded graph member untouched.
func withContext(rec Record, ctx any) Record {
	out := make(Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out[KeyContext] = ctx
	return out
}
