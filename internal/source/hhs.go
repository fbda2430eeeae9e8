package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/breachwatch/breachwatch/internal/htmltext"
	"github.com/breachwatch/breachwatch/internal/model"
	"golang.org/x/net/html"
)

// Some disclosure portals refuse requests without a browser-looking agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HHSAdapter extracts the static paginated breach table published by the
// HHS Office for Civil Rights. The page is server-rendered, so a plain
// HTTP GET suffices.
type HHSAdapter struct {
	URL    string
	Client *http.Client
}

// NewHHSAdapter creates the static-table adapter with a bounded-timeout
// HTTP client.
func NewHHSAdapter(url string, timeout time.Duration) *HHSAdapter {
	if timeout <= 0 {
		timeout = model.DefaultFetchTimeout
	}
	return &HHSAdapter{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Name implements Adapter.
func (a *HHSAdapter) Name() string { return model.SourceHHS }

// Fetch downloads the portal page and turns every body row of its data
// table into one record, zipping trimmed cell text against the header
// at the same column index. Row order is preserved and uncapped.
func (a *HHSAdapter) Fetch(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", a.URL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.URL, err)
	}

	table := htmltext.FirstHeaderedTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no data table found at %s", a.URL)
	}

	headers, rows := htmltext.TableData(table)
	records := make([]model.Record, 0, len(rows))
	for _, cells := range rows {
		record := make(model.Record, len(headers))
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			if i < len(cells) {
				record[header] = cells[i]
			}
		}
		if len(record) == 0 {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
