package source

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/breachwatch/breachwatch/internal/browser"
	"github.com/breachwatch/breachwatch/internal/htmltext"
	"github.com/breachwatch/breachwatch/internal/model"
	"golang.org/x/net/html"
)

// MaineAdapter extracts the Maine AG notification list: a rendered page of
// links to per-breach detail pages, each carrying "label: value" lines.
type MaineAdapter struct {
	URL string
	// LinkCap bounds how many detail pages are visited per fetch.
	LinkCap int
	// MinURLLen filters boilerplate navigation: only hrefs at least this
	// long are treated as detail-page links. Fragile by nature; tracked
	// in DESIGN.md.
	MinURLLen int
	// Settle is the post-load delay applied to every navigation.
	Settle time.Duration
}

// NewMaineAdapter creates the link-list adapter with the default caps.
func NewMaineAdapter(url string, settle time.Duration) *MaineAdapter {
	return &MaineAdapter{
		URL:       url,
		LinkCap:   model.DefaultMaineLinkCap,
		MinURLLen: model.DefaultMaineMinURL,
		Settle:    settle,
	}
}

// Name implements SessionAdapter.
func (a *MaineAdapter) Name() string { return model.SourceMaine }

// Fetch runs the two-phase extraction: collect detail-page links from the
// list page, then visit each and parse its labeled lines. A navigation
// failure on one link skips that link only.
func (a *MaineAdapter) Fetch(ctx context.Context, r browser.Renderer) ([]model.Record, error) {
	links, err := a.collectLinks(ctx, r)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(links))
	for _, link := range links {
		record, err := a.fetchDetail(ctx, r, link)
		if err != nil {
			log.Printf("source %s: skipping %s: %v", a.Name(), link, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *MaineAdapter) collectLinks(ctx context.Context, r browser.Renderer) ([]string, error) {
	if err := r.Navigate(ctx, a.URL, a.Settle); err != nil {
		return nil, err
	}
	rendered, err := r.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing list page: %w", err)
	}

	base, err := url.Parse(a.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing list URL: %w", err)
	}

	var links []string
	for _, link := range htmltext.Links(doc, base) {
		if len(link) < a.MinURLLen {
			continue
		}
		links = append(links, link)
		if len(links) == a.LinkCap {
			break
		}
	}
	return links, nil
}

// fetchDetail renders one detail page and turns its content region's
// "label: value" lines into fields. The link itself is always recorded
// under URL; every other field depends on what the page exposes.
func (a *MaineAdapter) fetchDetail(ctx context.Context, r browser.Renderer, link string) (model.Record, error) {
	if err := r.Navigate(ctx, link, a.Settle); err != nil {
		return nil, err
	}
	rendered, err := r.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing detail page: %w", err)
	}

	content := htmltext.FindElement(doc, "main")
	if content == nil {
		content = htmltext.FindElement(doc, "body")
	}
	if content == nil {
		content = doc
	}

	record := model.Record{urlField: link}
	for _, line := range htmltext.VisibleLines(content) {
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" || label == urlField {
			continue
		}
		record[label] = strings.TrimSpace(value)
	}
	return record, nil
}
