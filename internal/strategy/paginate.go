package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"coaltracker/internal"
	"coaltracker/internal/fetch"
	"coaltracker/internal/schema"
)

// PaginatedCollector walks an endpoint through several pagination
// conventions, accumulating normalized records until a whole
// iteration yields nothing or the page cap is hit. The cap is a soft
// stop: whatever was collected so far is still returned.
type PaginatedCollector struct {
	client  *fetch.Client
	timeout time.Duration
	delay   time.Duration
	maxPage int
	log     *slog.Logger

	// Endpoint makes the collector runnable as a standalone chain
	// entry; empty means it only runs as the probe's fallback.
	Endpoint string
}

func NewPaginatedCollector(client *fetch.Client, timeout, delay time.Duration, maxPages int, log *slog.Logger) *PaginatedCollector {
	if maxPages <= 0 {
		maxPages = 100
	}
	return &PaginatedCollector{
		client:  client,
		timeout: timeout,
		delay:   delay,
		maxPage: maxPages,
		log:     log,
	}
}

func (p *PaginatedCollector) Name() string { return "paginated" }

func (p *PaginatedCollector) Attempt(ctx context.Context) internal.Dataset {
	if p.Endpoint == "" {
		return nil
	}
	return p.Collect(ctx, p.Endpoint)
}

// Collect requests page after page from base. Each iteration tries
// every convention in order and takes the first that returns data;
// an iteration where none does ends the loop.
func (p *PaginatedCollector) Collect(ctx context.Context, base string) internal.Dataset {
	all := internal.Dataset{}

	for page := 1; ; page++ {
		if page > p.maxPage {
			p.log.Warn("pagination cap reached", "pages", p.maxPage, "records", len(all))
			break
		}

		candidates := []string{
			fmt.Sprintf("%s?page=%d", base, page),
			fmt.Sprintf("%s?offset=%d", base, len(all)),
			fmt.Sprintf("%s?limit=1000&offset=%d", base, len(all)),
			fmt.Sprintf("%s&page=%d", base, page),
		}

		var batch internal.Dataset
		for _, url := range candidates {
			resp, err := p.client.Get(ctx, url, p.timeout)
			if err != nil || !resp.OK() {
				continue
			}
			var payload any
			if err := json.Unmarshal(resp.Body, &payload); err != nil {
				continue
			}
			batch = schema.NormalizeBatch(schema.ExtractRecords(payload))
			if len(batch) > 0 {
				break
			}
		}

		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		p.log.Info("pagination: page collected", "page", page, "total", len(all))

		// Courtesy delay between successful pages.
		if !sleepCtx(ctx, p.delay) {
			break
		}
	}

	return all
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
