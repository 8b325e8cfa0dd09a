package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"coaltracker/internal"
	"coaltracker/internal/fetch"
	"coaltracker/internal/schema"
)

type discoveryKind int

const (
	discoveryNotFound discoveryKind = iota
	discoveryEndpoint
	discoveryEmbedded
)

// discovery is the outcome of endpoint hunting: a concrete endpoint
// URL, a marker that the data sits inline in the page itself, or
// nothing. The embedded case deliberately carries no URL so a
// re-scrape re-parses the page instead of re-requesting anything.
type discovery struct {
	kind discoveryKind
	url  string
}

// LiveApiProbe guesses REST-style endpoints off the publisher's base
// URL. When a discovered endpoint reads empty it falls back to the
// paginated collector on that endpoint; when the data turns out to be
// inlined it delegates to the embedded extractor.
type LiveApiProbe struct {
	client    *fetch.Client
	baseURL   string
	pageURL   string
	paths     []string
	timeout   time.Duration
	embedded  *EmbeddedDataExtractor
	paginator *PaginatedCollector
	log       *slog.Logger
}

func NewLiveApiProbe(client *fetch.Client, baseURL, pageURL string, paths []string, timeout time.Duration,
	embedded *EmbeddedDataExtractor, paginator *PaginatedCollector, log *slog.Logger) *LiveApiProbe {
	return &LiveApiProbe{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		pageURL:   pageURL,
		paths:     paths,
		timeout:   timeout,
		embedded:  embedded,
		paginator: paginator,
		log:       log,
	}
}

func (p *LiveApiProbe) Name() string { return "live_api" }

func (p *LiveApiProbe) Attempt(ctx context.Context) internal.Dataset {
	body := p.primaryPage(ctx)
	disc := p.discover(ctx, body)

	switch disc.kind {
	case discoveryEndpoint:
		p.log.Info("probe: endpoint found", "url", disc.url)
		if data := p.readEndpoint(ctx, disc.url); len(data) > 0 {
			return data
		}
		if p.paginator != nil {
			return p.paginator.Collect(ctx, disc.url)
		}
		return nil
	case discoveryEmbedded:
		p.log.Info("probe: data embedded in page")
		if p.embedded == nil {
			return nil
		}
		return p.embedded.ExtractFrom(body)
	default:
		p.log.Info("probe: no endpoint found")
		return nil
	}
}

// primaryPage fetches the tracker page used for hint scanning; a
// failure here only disables the embedded fallback.
func (p *LiveApiProbe) primaryPage(ctx context.Context) string {
	resp, err := p.client.Get(ctx, p.pageURL, p.timeout)
	if err != nil || !resp.OK() {
		p.log.Warn("probe: primary page fetch failed", "url", p.pageURL, "err", err)
		return ""
	}
	return string(resp.Body)
}

func (p *LiveApiProbe) discover(ctx context.Context, body string) discovery {
	for _, path := range p.paths {
		full := p.baseURL + path
		resp, err := p.client.Get(ctx, full, p.timeout)
		if err != nil || !resp.OK() {
			continue
		}
		var payload any
		if err := json.Unmarshal(resp.Body, &payload); err != nil {
			continue
		}
		if schema.Plausible(payload) {
			return discovery{kind: discoveryEndpoint, url: full}
		}
	}

	if body != "" && p.embedded != nil {
		for _, re := range p.embedded.patterns {
			for _, m := range re.FindAllStringSubmatch(body, -1) {
				if len(m) < 2 {
					continue
				}
				var payload any
				if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
					continue
				}
				if schema.Plausible(payload) {
					return discovery{kind: discoveryEmbedded}
				}
			}
		}
	}

	return discovery{kind: discoveryNotFound}
}

func (p *LiveApiProbe) readEndpoint(ctx context.Context, url string) internal.Dataset {
	resp, err := p.client.Get(ctx, url, p.timeout)
	if err != nil || !resp.OK() {
		p.log.Warn("probe: endpoint read failed", "url", url, "err", err)
		return nil
	}
	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		p.log.Warn("probe: endpoint body not JSON", "url", url)
		return nil
	}
	if !schema.Plausible(payload) {
		return nil
	}
	return schema.NormalizeBatch(schema.ExtractRecords(payload))
}
