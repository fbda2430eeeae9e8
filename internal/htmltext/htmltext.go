// Package htmltext provides the HTML walkers shared by the source
// adapters: table extraction, link collection, and visible-text lines.
package htmltext

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// FirstTable returns the first <table> element in document order, or nil.
func FirstTable(doc *html.Node) *html.Node {
	return findElement(doc, "table", nil)
}

// FirstHeaderedTable returns the first <table> that contains a <th> cell,
// or nil. This is the structural marker used to locate the data table on
// pages that carry layout tables as well.
func FirstHeaderedTable(doc *html.Node) *html.Node {
	return findElement(doc, "table", func(table *html.Node) bool {
		return findElement(table, "th", nil) != nil
	})
}

// TableData extracts the header texts and body-row cell texts of a table.
// The header row is the first row containing a <th>; when no row has one,
// the first row serves as the header. Rows belonging to nested tables are
// ignored.
func TableData(table *html.Node) (headers []string, rows [][]string) {
	var trs []*html.Node
	collectRows(table, table, &trs)

	headerIdx := -1
	for i, tr := range trs {
		if rowHasTag(tr, "th") {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 && len(trs) > 0 {
		headerIdx = 0
	}
	if headerIdx == -1 {
		return nil, nil
	}

	headers = rowCells(trs[headerIdx])
	for i, tr := range trs {
		if i == headerIdx {
			continue
		}
		rows = append(rows, rowCells(tr))
	}
	return headers, rows
}

// Links returns the href targets of all anchors under n, resolved against
// base and in document order. Empty, fragment-only, and javascript: hrefs
// are dropped.
func Links(n *html.Node, base *url.URL) []string {
	var out []string
	walk(n, func(node *html.Node) bool {
		if node.Type != html.ElementNode || node.Data != "a" {
			return true
		}
		href := attr(node, "href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		out = append(out, ref.String())
		return true
	})
	return out
}

// Text returns the whitespace-normalized visible text under n. Script and
// style contents are excluded.
func Text(n *html.Node) string {
	var sb strings.Builder
	appendText(n, &sb, " ")
	return strings.Join(strings.Fields(sb.String()), " ")
}

// VisibleLines returns the visible text under n split into lines at block
// element boundaries, each line whitespace-normalized, empties dropped.
func VisibleLines(n *html.Node) []string {
	var sb strings.Builder
	appendText(n, &sb, "\n")
	var lines []string
	for _, raw := range strings.Split(sb.String(), "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// FindElement returns the first element with the given tag under n, or nil.
func FindElement(n *html.Node, tag string) *html.Node {
	return findElement(n, tag, nil)
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

func appendText(n *html.Node, sb *strings.Builder, blockSep string) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
			return
		}
		if blockTags[n.Data] {
			sb.WriteString(blockSep)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb, blockSep)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteString(blockSep)
	}
}

// walk visits nodes depth-first; the visitor returns false to stop.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func findElement(n *html.Node, tag string, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == tag {
			if match == nil || match(node) {
				found = node
				return false
			}
		}
		return true
	})
	return found
}

// collectRows gathers the <tr> descendants of root that belong to root
// itself, not to a nested table.
func collectRows(n, root *html.Node, out *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c.Data == "table" && c != root {
				continue
			}
			if c.Data == "tr" {
				*out = append(*out, c)
				continue
			}
		}
		collectRows(c, root, out)
	}
}

func rowHasTag(tr *html.Node, tag string) bool {
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return true
		}
	}
	return false
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, Text(c))
		}
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
