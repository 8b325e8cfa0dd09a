package strategy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"coaltracker/internal"
	"coaltracker/internal/config"
	"coaltracker/internal/fetch"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeResponse(status int, contentType string, body []byte) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

// newFakeClient wires a canned network into the shared HTTP session.
func newFakeClient(t *testing.T, handle func(req *http.Request) (*http.Response, error)) *fetch.Client {
	t.Helper()
	client := fetch.NewClient(config.Config{UserAgent: "test-agent"}, testLogger())
	client.SetTransport(roundTripFunc(handle))
	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func plantRecords(names ...string) internal.Dataset {
	out := make(internal.Dataset, 0, len(names))
	for _, name := range names {
		out = append(out, internal.Record{internal.FieldPlantName: internal.TextValue(name)})
	}
	return out
}
