package pagination

import (
	"net/url"
	"testing"
)

func TestFromQueryDefaults(t *testing.T) {
	p := FromQuery(url.Values{})
	if p.Page != 1 {
		t.Fatalf("expected page=1, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Fatalf("expected per_page=%d, got %d", DefaultPerPage, p.PerPage)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset=0, got %d", p.Offset())
	}
}

func TestNormalizeCapsPerPage(t *testing.T) {
	p := Normalize(Params{Page: 3, PerPage: 500})
	if p.PerPage != MaxPerPage {
		t.Fatalf("expected per_page=%d, got %d", MaxPerPage, p.PerPage)
	}
	if p.Offset() != 2*MaxPerPage {
		t.Fatalf("expected offset=%d, got %d", 2*MaxPerPage, p.Offset())
	}
}

func TestPages(t *testing.T) {
	p := Normalize(Params{PerPage: 20})
	if got := p.Pages(0); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
	if got := p.Pages(20); got != 1 {
		t.Fatalf("expected 1 page, got %d", got)
	}
	if got := p.Pages(21); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}
