package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	"coaltracker/internal"
	"coaltracker/internal/fetch"
	"coaltracker/internal/schema"
)

// EmbeddedDataExtractor pulls datasets that pages inline into script
// variables. It works standalone against the tracker page and its
// core scan is shared by the live-API probe and the rendered-page
// extractor.
type EmbeddedDataExtractor struct {
	client   *fetch.Client
	pageURL  string
	patterns []*regexp.Regexp
	timeout  time.Duration
	log      *slog.Logger
}

func NewEmbeddedDataExtractor(client *fetch.Client, pageURL string, patterns []string, timeout time.Duration, log *slog.Logger) *EmbeddedDataExtractor {
	return &EmbeddedDataExtractor{
		client:   client,
		pageURL:  pageURL,
		patterns: compilePatterns(patterns, log),
		timeout:  timeout,
		log:      log,
	}
}

func (e *EmbeddedDataExtractor) Name() string { return "embedded" }

func (e *EmbeddedDataExtractor) Attempt(ctx context.Context) internal.Dataset {
	resp, err := e.client.Get(ctx, e.pageURL, e.timeout)
	if err != nil || !resp.OK() {
		e.log.Warn("embedded: page fetch failed", "url", e.pageURL, "err", err)
		return nil
	}
	return e.ExtractFrom(string(resp.Body))
}

// ExtractFrom scans a page body for inline assignments and returns
// the first match that decodes to a plausible payload, normalized.
func (e *EmbeddedDataExtractor) ExtractFrom(body string) internal.Dataset {
	return extractInline(body, e.patterns)
}

func extractInline(body string, patterns []*regexp.Regexp) internal.Dataset {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if len(m) < 2 {
				continue
			}
			var payload any
			if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
				continue
			}
			if !schema.Plausible(payload) {
				continue
			}
			if data := schema.NormalizeBatch(schema.ExtractRecords(payload)); len(data) > 0 {
				return data
			}
		}
	}
	return nil
}

// compilePatterns builds the inline-assignment matchers. Patterns are
// applied in dotall mode since inlined arrays span lines; a pattern
// that fails to compile is skipped, not fatal.
func compilePatterns(patterns []string, log *slog.Logger) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?s)" + p)
		if err != nil {
			log.Warn("embedded: bad inline pattern", "pattern", p, "err", err)
			continue
		}
		out = append(out, re)
	}
	return out
}
