package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"coaltracker/internal"
	"coaltracker/internal/fetch"
	"coaltracker/internal/schema"
)

// widerInlinePatterns extends the probe's generic inline-assignment
// scan with the variable names the tracker's client code is known to
// use. Only consulted against fully rendered markup.
var widerInlinePatterns = []string{
	`var\s+coalPlants\s*=\s*(\[.*?\]);`,
	`var\s+data\s*=\s*(\[.*?\]);`,
	`window\.coalData\s*=\s*(\[.*?\]);`,
	`"plants":\s*(\[.*?\])`,
	`"coal_plants":\s*(\[.*?\])`,
	`var\s+\w+\s*=\s*(\[.*?\]|\{.*?\});`,
}

// networkKeywords select captured response URLs worth refetching.
var networkKeywords = []string{"coal", "plant", "data", "api"}

// pageSnapshot is everything the probes need from one rendered page
// load: final markup, each frame's markup, and the URLs of completed
// network responses. Splitting rendering from probing keeps the four
// probes testable without a browser.
type pageSnapshot struct {
	HTML        string
	FrameHTML   []string
	NetworkURLs []string
}

// RenderedPageExtractor is the most expensive strategy: it loads the
// tracker page in a headless browser, lets client-side code run, and
// unions whatever data four independent probes find in the result.
type RenderedPageExtractor struct {
	client     *fetch.Client
	trackerURL string
	headless   bool
	timeout    time.Duration
	patterns   []*regexp.Regexp
	log        *slog.Logger

	// render is swapped in tests; nil means the rod renderer.
	render func(ctx context.Context) (*pageSnapshot, error)
}

func NewRenderedPageExtractor(client *fetch.Client, trackerURL string, headless bool, timeout time.Duration, log *slog.Logger) *RenderedPageExtractor {
	return &RenderedPageExtractor{
		client:     client,
		trackerURL: trackerURL,
		headless:   headless,
		timeout:    timeout,
		patterns:   compilePatterns(widerInlinePatterns, log),
		log:        log,
	}
}

func (r *RenderedPageExtractor) Name() string { return "rendered_page" }

func (r *RenderedPageExtractor) Attempt(ctx context.Context) internal.Dataset {
	render := r.render
	if render == nil {
		render = r.renderWithRod
	}
	snap, err := render(ctx)
	if err != nil {
		r.log.Warn("rendered: page load failed", "err", err)
		return nil
	}

	var out internal.Dataset

	// Probe 1: rendered tables.
	out = append(out, tablesFromHTML(r.log, snap.HTML)...)

	// Probe 2: tables inside each frame.
	for _, frame := range snap.FrameHTML {
		out = append(out, tablesFromHTML(r.log, frame)...)
	}

	// Probe 3: inline variables against the wider pattern set.
	out = append(out, extractInline(snap.HTML, r.patterns)...)

	// Probe 4: refetch captured network responses that look relevant.
	out = append(out, r.refetchCaptured(ctx, snap.NetworkURLs)...)

	return out
}

// renderWithRod owns the whole browser session: created lazily here,
// torn down on every exit path.
func (r *RenderedPageExtractor) renderWithRod(ctx context.Context) (*pageSnapshot, error) {
	l := launcher.New().Headless(r.headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, err
	}
	defer func() {
		_ = browser.Close()
		l.Kill()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var captured []string
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		mu.Lock()
		captured = append(captured, e.Response.URL)
		mu.Unlock()
	})()

	if err := page.Timeout(r.timeout).Navigate(r.trackerURL); err != nil {
		return nil, err
	}
	if err := page.Timeout(r.timeout).WaitLoad(); err != nil {
		return nil, err
	}
	// Let XHR-driven widgets settle before snapshotting.
	wait := page.Timeout(r.timeout).WaitRequestIdle(
		500*time.Millisecond, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()

	snap := &pageSnapshot{}
	if html, err := page.HTML(); err == nil {
		snap.HTML = html
	}

	if iframes, err := page.Elements("iframe"); err == nil {
		for _, el := range iframes {
			frame, err := el.Frame()
			if err != nil {
				continue
			}
			if html, err := frame.HTML(); err == nil {
				snap.FrameHTML = append(snap.FrameHTML, html)
			}
		}
	}

	mu.Lock()
	snap.NetworkURLs = append(snap.NetworkURLs, captured...)
	mu.Unlock()

	return snap, nil
}

// tablesFromHTML parses every rendered table with a substantial body.
// Tiny tables are layout artifacts, not data.
func tablesFromHTML(log *slog.Logger, html string) internal.Dataset {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out internal.Dataset
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() <= 6 {
			return
		}

		var header []string
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, strings.TrimSpace(cell.Text()))
		})

		var body [][]string
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				body = append(body, cells)
			}
		})

		data := schema.NormalizeBatch(tableToRawRecords(header, body))
		if len(data) > 0 {
			log.Debug("rendered: table parsed", "records", len(data))
			out = append(out, data...)
		}
	})
	return out
}

func (r *RenderedPageExtractor) refetchCaptured(ctx context.Context, urls []string) internal.Dataset {
	for _, u := range urls {
		lower := strings.ToLower(u)
		relevant := false
		for _, kw := range networkKeywords {
			if strings.Contains(lower, kw) {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		resp, err := r.client.Get(ctx, u, r.timeout)
		if err != nil || !resp.OK() {
			continue
		}
		var payload any
		if err := json.Unmarshal(resp.Body, &payload); err != nil {
			continue
		}
		if !schema.Plausible(payload) {
			continue
		}
		if data := schema.NormalizeBatch(schema.ExtractRecords(payload)); len(data) > 0 {
			r.log.Info("rendered: network response yielded data", "url", u, "records", len(data))
			return data
		}
	}
	return nil
}
