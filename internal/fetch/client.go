// Package fetch owns the single outbound HTTP session shared by all
// acquisition strategies. Headers are configured once at startup and
// the client is used read-only afterwards.
package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"coaltracker/internal/config"
)

type Client struct {
	http *resty.Client
	log  *slog.Logger
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	c := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Connection", "keep-alive").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	return &Client{http: c, log: log}
}

// SetTransport swaps the underlying round tripper; tests use it to
// substitute a fake network.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.SetTransport(rt)
}

type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Get issues one GET with its own deadline. A non-2xx status is not
// an error here; strategies decide what a status means for them.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.http.R().SetContext(reqCtx).Get(url)
	if err != nil {
		return nil, err
	}
	c.log.Debug("fetched", "url", url, "status", resp.StatusCode(), "bytes", len(resp.Body()))
	return &Response{
		StatusCode:  resp.StatusCode(),
		Body:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}
