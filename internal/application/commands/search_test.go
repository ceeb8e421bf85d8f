package commands

import (
	"strings"
	"testing"

	"forensdesk/internal/domain"
)

func TestRelevance(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		path  string
		query string
		want  int
	}{
		{"exact name", "invoice.pdf", "/docs/invoice.pdf", "invoice.pdf", tierExact},
		{"name prefix", "invoice_2024.pdf", "/invoice_2024.pdf", "invoice", tierPrefix},
		{"inside name", "old_invoice.pdf", "/old_invoice.pdf", "invoice", tierName},
		{"directory only", "ledger.xls", "/invoices/ledger.xls", "invoice", tierPath},
		{"case insensitive", "INVOICE.PDF", "/INVOICE.PDF", "invoice", tierPrefix},
		{"tight subsequence", "tax_return.doc", "/tax_return.doc", "txr", tierPath - 1 - 2},
		{"out of order", "invoice.pdf", "/invoice.pdf", "fdp", 0},
		{"no match", "invoice.pdf", "/invoice.pdf", "xyz", 0},
		{"empty query", "invoice.pdf", "/invoice.pdf", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevance(tt.file, tt.path, tt.query); got != tt.want {
				t.Errorf("Relevance(%q, %q, %q) = %d, want %d", tt.file, tt.path, tt.query, got, tt.want)
			}
		})
	}
}

func TestRelevanceScatteredNeverBeatsSubstring(t *testing.T) {
	long := strings.Repeat("x", 500)
	if got := Relevance("a"+long+"b", "", "ab"); got != 1 {
		t.Errorf("very loose match should floor at 1, got %d", got)
	}
	if Relevance("tr.f", "", "trf") >= Relevance("trf.txt", "", "trf") {
		t.Error("a subsequence must rank below a prefix")
	}
}

func TestRankResults(t *testing.T) {
	results := []domain.SearchResult{
		{Name: "offset:4096", InodeItem: "offset:4096"},
		{Name: "old_invoice.pdf", Path: "/docs/old_invoice.pdf", InodeItem: "40"},
		{Name: "ledger.xls", Path: "/invoices/ledger.xls", InodeItem: "41"},
		{Name: "invoice.pdf", Path: "/docs/invoice.pdf", InodeItem: "42"},
		{Name: "offset:512", InodeItem: "offset:512"},
	}

	RankResults(results, "invoice")

	want := []string{"invoice.pdf", "old_invoice.pdf", "ledger.xls", "offset:4096", "offset:512"}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, results[i].Name)
		}
	}
}

func TestIsRawHit(t *testing.T) {
	if !IsRawHit(domain.SearchResult{InodeItem: "offset:0"}) {
		t.Error("offset hits are raw")
	}
	if IsRawHit(domain.SearchResult{InodeItem: "4-128-4"}) {
		t.Error("NTFS attribute items are not raw")
	}
}
