package refdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kabudata/tachibana-adapter/pkg/model"
)

// ListingSource yields upcoming and recent IPO listings.
type ListingSource interface {
	Listings(ctx context.Context) ([]model.Instrument, error)
}

// HTTPListingSource scrapes the public IPO calendar page.
type HTTPListingSource struct {
	URL    string
	Client *http.Client
}

func (h HTTPListingSource) Listings(ctx context.Context) ([]model.Instrument, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("listing request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listings: unexpected status %d", resp.StatusCode)
	}
	return ParseListing(resp.Body)
}

// ParseListing extracts IPO rows from the calendar page. Only Tokyo listings
// are kept; the market cell is like "東G" and the leading exchange marker is
// stripped, leaving the segment code. Withdrawn offerings are dropped.
func ParseListing(r io.Reader) ([]model.Instrument, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	var out []model.Instrument
	for _, table := range findTables(doc) {
		rows := tableRows(table)
		code, name, market := headerIndexes(rows)
		if code < 0 {
			continue
		}
		for _, row := range rows[1:] {
			if len(row) <= code || len(row) <= name || len(row) <= market {
				continue
			}
			in, ok := listingRow(row[code], row[name], row[market])
			if ok {
				out = append(out, in)
			}
		}
	}
	return out, nil
}

func listingRow(code, name, market string) (model.Instrument, bool) {
	code = strings.TrimSpace(code)
	name = normalizeName(strings.TrimSpace(name))
	market = strings.TrimSpace(market)

	if code == "" || !strings.HasPrefix(market, "東") {
		return model.Instrument{}, false
	}
	if strings.Contains(name, "中止") {
		return model.Instrument{}, false
	}
	return model.Instrument{
		Code:    code,
		Name:    name,
		Segment: strings.TrimPrefix(market, "東"),
	}, true
}

// headerIndexes locates the code, name and market columns by their header
// cells. Returns -1 for code when the table is not the listing table.
func headerIndexes(rows [][]string) (code, name, market int) {
	code, name, market = -1, -1, -1
	if len(rows) == 0 {
		return
	}
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "ｺｰﾄﾞ", "コード":
			code = i
		case "銘柄", "銘柄名":
			name = i
		case "市場":
			market = i
		}
	}
	if name < 0 || market < 0 {
		code = -1
	}
	return
}

func findTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tables
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, nodeText(c))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
