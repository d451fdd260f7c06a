package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any listing query can request.
	MaxPerPage = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// FromQuery parses page and per_page from query parameters, applying defaults.
func FromQuery(values url.Values) Params {
	page, _ := strconv.Atoi(values.Get("page"))
	perPage, _ := strconv.Atoi(values.Get("per_page"))
	return Normalize(Params{Page: page, PerPage: perPage})
}

// Normalize enforces the configured defaults and maximum page size.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pages returns how many pages the given total spans.
func (p Params) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	return pages
}
