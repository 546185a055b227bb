// Package pagination turns page/limit query parameters into store offsets
// and builds the metadata returned with every paginated list.
package pagination

import (
	"context"
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params is a normalized page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the page returned alongside the items.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is a slice of items plus its metadata.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// New clamps page and limit into their valid ranges. A page below 1 and a
// zero limit fall back to the defaults; a negative limit becomes 1.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// Keep Skip from overflowing.
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit}
}

// FromQuery reads "page" and "limit" from q. Missing or unparseable values
// use the defaults.
func FromQuery(q url.Values) Params {
	return New(intParam(q, "page", DefaultPage), intParam(q, "limit", DefaultLimit))
}

func intParam(q url.Values, key string, fallback int) int {
	v := q.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Skip is the number of items before the requested page.
func (p Params) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the metadata for total matching items.
func (p Params) Meta(total int) Meta {
	if total < 0 {
		total = 0
	}
	return Meta{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: Pages(total, p.Limit),
	}
}

// Pages returns ceil(total/limit).
func Pages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ListFunc returns at most limit items starting at offset skip.
type ListFunc[T any] func(ctx context.Context, skip, limit int) ([]T, error)

// CountFunc returns the total number of items matching the same filter.
type CountFunc func(ctx context.Context) (int, error)

// Fetch runs the page query and the count query and assembles the result.
// The two queries are not read from one snapshot; a concurrent write can make
// Total disagree with the items by one.
func Fetch[T any](ctx context.Context, p Params, list ListFunc[T], count CountFunc) (*Page[T], error) {
	items, err := list(ctx, p.Skip(), p.Limit)
	if err != nil {
		return nil, err
	}
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Meta: p.Meta(total)}, nil
}
