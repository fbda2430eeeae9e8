package source

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/breachwatch/breachwatch/internal/browser"
	"github.com/breachwatch/breachwatch/internal/htmltext"
	"github.com/breachwatch/breachwatch/internal/model"
	"golang.org/x/net/html"
)

// TexasAdapter extracts the Texas AG breach table, which is rendered
// client-side and paginated in the browser. The adapter jumps to the last
// page when the control is present so the newest disclosures are read.
type TexasAdapter struct {
	URL string
	// LastPageSelector targets the pager's jump-to-last control. Clicking
	// it is best effort; extraction proceeds against whatever is rendered.
	LastPageSelector string
	// Settle is the delay after load and again after the pager click.
	Settle time.Duration
	// RowCap bounds the records kept after extraction.
	RowCap int
}

// NewTexasAdapter creates the dynamic-table adapter with the default
// settle delay and row cap.
func NewTexasAdapter(url, lastPageSelector string, settle time.Duration) *TexasAdapter {
	return &TexasAdapter{
		URL:              url,
		LastPageSelector: lastPageSelector,
		Settle:           settle,
		RowCap:           model.DefaultTexasRowCap,
	}
}

// Name implements SessionAdapter.
func (a *TexasAdapter) Name() string { return model.SourceTexas }

// Fetch renders the page, attempts the last-page jump, and extracts the
// first table. Short rows are padded with explicit nulls so every record
// carries the full header-derived field set, plus the constant URL.
func (a *TexasAdapter) Fetch(ctx context.Context, r browser.Renderer) ([]model.Record, error) {
	if err := r.Navigate(ctx, a.URL, a.Settle); err != nil {
		return nil, err
	}

	if a.LastPageSelector != "" {
		if err := r.Click(ctx, a.LastPageSelector); err != nil {
			log.Printf("source %s: last-page control: %v", a.Name(), err)
		} else if a.Settle > 0 {
			select {
			case <-time.After(a.Settle):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	rendered, err := r.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered page: %w", err)
	}

	table := htmltext.FirstTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no table rendered at %s", a.URL)
	}

	headers, rows := htmltext.TableData(table)
	if len(headers) == 0 {
		return nil, fmt.Errorf("table at %s has no header row", a.URL)
	}

	records := make([]model.Record, 0, len(rows))
	for _, cells := range rows {
		record := make(model.Record, len(headers)+1)
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			if i < len(cells) {
				record[header] = cells[i]
			} else {
				record[header] = nil
			}
		}
		record[urlField] = a.URL
		records = append(records, record)
	}

	if a.RowCap > 0 && len(records) > a.RowCap {
		records = records[:a.RowCap]
	}
	return records, nil
}
