package htmltext

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func parse(t *testing.T, doc string) *html.Node {
	t.Helper()
	n, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}

func TestFirstHeaderedTable_SkipsLayoutTables(t *testing.T) {
	doc := parse(t, `
		<table><tr><td>layout only</td></tr></table>
		<table id="data"><tr><th>Name</th></tr><tr><td>Acme</td></tr></table>`)

	table := FirstHeaderedTable(doc)
	if table == nil {
		t.Fatal("FirstHeaderedTable returned nil")
	}
	headers, rows := TableData(table)
	if diff := cmp.Diff([]string{"Name"}, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(rows) != 1 || rows[0][0] != "Acme" {
		t.Errorf("rows = %v, want one row [Acme]", rows)
	}
}

func TestFirstHeaderedTable_NoneFound(t *testing.T) {
	doc := parse(t, `<div><table><tr><td>no header</td></tr></table></div>`)
	if table := FirstHeaderedTable(doc); table != nil {
		t.Errorf("FirstHeaderedTable = %v, want nil", table)
	}
}

func TestTableData_HeaderRowAndOrder(t *testing.T) {
	doc := parse(t, `<table>
		<thead><tr><th> Name </th><th>State</th></tr></thead>
		<tbody>
			<tr><td>Acme Corp</td><td>ME</td></tr>
			<tr><td>Globex</td><td>TX</td></tr>
			<tr><td>Initech</td><td>CA</td></tr>
		</tbody>
	</table>`)

	headers, rows := TableData(FirstTable(doc))
	if diff := cmp.Diff([]string{"Name", "State"}, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"Acme Corp", "ME"}, {"Globex", "TX"}, {"Initech", "CA"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTableData_NoTHFallsBackToFirstRow(t *testing.T) {
	doc := parse(t, `<table>
		<tr><td>Entity</td><td>Date</td></tr>
		<tr><td>Acme</td><td>2024-01-02</td></tr>
	</table>`)

	headers, rows := TableData(FirstTable(doc))
	if diff := cmp.Diff([]string{"Entity", "Date"}, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}

func TestTableData_IgnoresNestedTables(t *testing.T) {
	doc := parse(t, `<table>
		<tr><th>Outer</th></tr>
		<tr><td><table><tr><td>inner</td></tr></table></td></tr>
	</table>`)

	headers, rows := TableData(FirstTable(doc))
	if len(headers) != 1 || headers[0] != "Outer" {
		t.Errorf("headers = %v, want [Outer]", headers)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1 (nested table rows must not leak)", len(rows))
	}
}

func TestLinks_ResolvesAndFilters(t *testing.T) {
	doc := parse(t, `
		<a href="/detail/1">one</a>
		<a href="https://example.org/abs">two</a>
		<a href="#top">skip</a>
		<a href="javascript:void(0)">skip</a>
		<a>no href</a>`)
	base, _ := url.Parse("https://example.com/list")

	got := Links(doc, base)
	want := []string{"https://example.com/detail/1", "https://example.org/abs"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestText_SkipsScriptAndNormalizesWhitespace(t *testing.T) {
	doc := parse(t, `<td>  Acme
		Corp <script>var x = 1;</script></td>`)
	if got := Text(doc); got != "Acme Corp" {
		t.Errorf("Text = %q, want %q", got, "Acme Corp")
	}
}

func TestVisibleLines_BlockBoundaries(t *testing.T) {
	doc := parse(t, `<main>
		<h1>Notice</h1>
		<p>Entity Name: Acme Corp</p>
		<div>Date of Breach: 2024-01-02</div>
		<span>inline </span><span>joined</span>
	</main>`)

	got := VisibleLines(FindElement(doc, "main"))
	want := []string{
		"Notice",
		"Entity Name: Acme Corp",
		"Date of Breach: 2024-01-02",
		"inline joined",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
