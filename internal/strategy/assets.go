package strategy

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"coaltracker/internal"
	"coaltracker/internal/fetch"
	"coaltracker/internal/schema"
)

type assetKind int

const (
	assetUnknown assetKind = iota
	assetSpreadsheet
	assetDelimited
	assetPDF
)

// KnownAssetFetcher walks a fixed list of direct download URLs
// (spreadsheet exports, hosted snapshots) and accepts the first one
// that parses into substantially more than a decoy table's worth of
// records.
type KnownAssetFetcher struct {
	client     *fetch.Client
	urls       []string
	timeout    time.Duration
	minRecords int
	log        *slog.Logger
}

func NewKnownAssetFetcher(client *fetch.Client, urls []string, timeout time.Duration, minRecords int, log *slog.Logger) *KnownAssetFetcher {
	return &KnownAssetFetcher{
		client:     client,
		urls:       urls,
		timeout:    timeout,
		minRecords: minRecords,
		log:        log,
	}
}

func (f *KnownAssetFetcher) Name() string { return "known_assets" }

func (f *KnownAssetFetcher) Attempt(ctx context.Context) internal.Dataset {
	for _, assetURL := range f.urls {
		f.log.Info("assets: trying", "url", assetURL)
		resp, err := f.client.Get(ctx, assetURL, f.timeout)
		if err != nil {
			f.log.Debug("assets: fetch failed", "url", assetURL, "err", err)
			continue
		}
		if !resp.OK() {
			continue
		}

		var data internal.Dataset
		switch classifyAsset(assetURL, resp.ContentType) {
		case assetSpreadsheet:
			data = f.parseWorkbook(resp.Body)
		case assetDelimited:
			data = f.parseDelimited(resp.Body)
		case assetPDF:
			data = f.parsePDF(resp.Body)
		default:
			// Unknown type: a spreadsheet read is attempted first,
			// then a delimited one, matching suffix-less exports.
			data = f.parseWorkbook(resp.Body)
			if len(data) == 0 {
				data = f.parseDelimited(resp.Body)
			}
		}

		if len(data) > 0 {
			f.log.Info("assets: accepted", "url", assetURL, "records", len(data))
			return data
		}
	}
	return nil
}

func classifyAsset(assetURL, contentType string) assetKind {
	path := assetURL
	if u, err := url.Parse(assetURL); err == nil {
		path = u.Path
		// Google-Sheets-style exports carry the format in the query.
		if format := u.Query().Get("format"); format != "" {
			path += "." + format
		}
	}
	path = strings.ToLower(path)
	ct := strings.ToLower(contentType)

	switch {
	case strings.HasSuffix(path, ".xlsx"), strings.HasSuffix(path, ".xls"),
		strings.Contains(ct, "excel"), strings.Contains(ct, "spreadsheet"):
		return assetSpreadsheet
	case strings.HasSuffix(path, ".csv"), strings.Contains(ct, "csv"):
		return assetDelimited
	case strings.HasSuffix(path, ".pdf"), strings.Contains(ct, "pdf"):
		return assetPDF
	default:
		return assetUnknown
	}
}

// parseWorkbook writes the download to a scratch file, walks every
// sheet independently, and accepts the first sheet clearing the
// record threshold. The scratch file is removed on every exit path.
func (f *KnownAssetFetcher) parseWorkbook(blob []byte) internal.Dataset {
	tmp, err := os.CreateTemp("", "gcpt-asset-*.xlsx")
	if err != nil {
		f.log.Warn("assets: temp file failed", "err", err)
		return nil
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return nil
	}
	if err := tmp.Close(); err != nil {
		return nil
	}

	wb, err := excelize.OpenFile(tmpPath)
	if err != nil {
		f.log.Debug("assets: not a workbook", "err", err)
		return nil
	}
	defer wb.Close()

	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		raws := tableToRawRecords(rows[0], rows[1:])
		data := schema.NormalizeBatch(raws)
		if len(data) > f.minRecords {
			f.log.Info("assets: sheet accepted", "sheet", sheet, "records", len(data))
			return data
		}
	}
	return nil
}

func (f *KnownAssetFetcher) parseDelimited(blob []byte) internal.Dataset {
	reader := csv.NewReader(bytes.NewReader(blob))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}
	data := schema.NormalizeBatch(tableToRawRecords(rows[0], rows[1:]))
	if len(data) > f.minRecords {
		return data
	}
	return nil
}

// parsePDF handles tabular briefing files: plain text is pulled per
// page and lines are split on runs of two or more spaces or tabs,
// with the first multi-cell line taken as the header.
func (f *KnownAssetFetcher) parsePDF(blob []byte) internal.Dataset {
	reader, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil
	}

	var header []string
	var rows [][]string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			cells := splitPDFLine(line)
			if len(cells) < 2 {
				continue
			}
			if header == nil {
				header = cells
				continue
			}
			rows = append(rows, cells)
		}
	}
	if header == nil {
		return nil
	}

	data := schema.NormalizeBatch(tableToRawRecords(header, rows))
	if len(data) > f.minRecords {
		return data
	}
	return nil
}

func splitPDFLine(line string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
	if len(parts) < 2 {
		parts = splitOnWideGaps(line)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitOnWideGaps(line string) []string {
	var parts []string
	var current strings.Builder
	spaces := 0
	for _, r := range line {
		if r == ' ' {
			spaces++
			continue
		}
		if spaces >= 2 && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		} else if spaces > 0 && current.Len() > 0 {
			current.WriteRune(' ')
		}
		spaces = 0
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
