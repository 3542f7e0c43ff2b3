package service

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// SortBy room sort key
type SortBy string

const (
	SortByConfidence SortBy = "confidence"
	SortByRawLabel   SortBy = "raw_label"
	SortByCategory   SortBy = "category"
)

// SortOrder asc or desc
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ParseSortBy validates a sort_by value.
func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(s); v {
	case SortByConfidence, SortByRawLabel, SortByCategory:
		return v, nil
	}
	return "", invalid("sort_by", "must be one of confidence, raw_label, category; got %q", s)
}

// ParseSortOrder validates a sort_order value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch v := SortOrder(s); v {
	case SortAsc, SortDesc:
		return v, nil
	}
	return "", invalid("sort_order", "must be asc or desc; got %q", s)
}

// QueryParams filters, ordering and page window for a room listing.
// A nil Category or Q means the filter is not applied.
type QueryParams struct {
	MinConfidence float64
	RequireReview bool
	Category      *string
	Q             *string
	Limit         int
	Offset        int
	SortBy        SortBy
	SortOrder     SortOrder
}

// DefaultQueryParams the values used when a parameter is absent.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Limit:     DefaultLimit,
		SortBy:    SortByConfidence,
		SortOrder: SortDesc,
	}
}

// Validate checks every declared range and enum.
func (p QueryParams) Validate() error {
	if math.IsNaN(p.MinConfidence) || p.MinConfidence < 0 || p.MinConfidence > 1 {
		return invalid("min_confidence", "must be within [0, 1]")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return invalid("limit", "must be within [1, %d]", MaxLimit)
	}
	if p.Offset < 0 {
		return invalid("offset", "must be >= 0")
	}
	if _, err := ParseSortBy(string(p.SortBy)); err != nil {
		return err
	}
	if _, err := ParseSortOrder(string(p.SortOrder)); err != nil {
		return err
	}
	return nil
}

// FiltersEcho the filter values a page was computed with.
type FiltersEcho struct {
	MinConfidence float64 `json:"min_confidence"`
	RequireReview bool    `json:"require_review"`
	Category      *string `json:"category"`
	Q             *string `json:"q"`
}

// PageMeta counts describing a page. Total is the plan's unfiltered room
// count; Reviewed and NeedsReview cover the filtered set before paging.
type PageMeta struct {
	Total       int         `json:"total"`
	Count       int         `json:"count"`
	Limit       int         `json:"limit"`
	Offset      int         `json:"offset"`
	NextOffset  *int        `json:"next_offset"`
	Reviewed    int         `json:"reviewed"`
	NeedsReview int         `json:"needs_review"`
	SortBy      SortBy      `json:"sort_by"`
	SortOrder   SortOrder   `json:"sort_order"`
	Filters     FiltersEcho `json:"filters"`
}

// RoomPage response of a room listing.
type RoomPage struct {
	Items []RoomView `json:"items"`
	Meta  PageMeta   `json:"meta"`
}

// Selection filtered and sorted views plus their review counts.
type Selection struct {
	Views       []RoomView
	Reviewed    int
	NeedsReview int
}

// Select filters and sorts views without paging. views is not modified.
func Select(views []RoomView, p QueryParams) Selection {
	var sel Selection
	filtered := make([]RoomView, 0, len(views))
	for _, v := range views {
		if !matches(v, p) {
			continue
		}
		filtered = append(filtered, v)
		if !v.NeedsReview {
			sel.Reviewed++
		}
	}
	sel.NeedsReview = len(filtered) - sel.Reviewed

	compare := comparator(p.SortBy)
	if p.SortOrder == SortDesc {
		// the tie-break reverses along with the primary key
		asc := compare
		compare = func(a, b RoomView) int { return asc(b, a) }
	}
	slices.SortStableFunc(filtered, compare)
	sel.Views = filtered
	return sel
}

// Query runs filter, count, sort and paginate over one plan's views.
// It assumes p is valid and never fails.
func Query(views []RoomView, p QueryParams) RoomPage {
	sel := Select(views, p)
	n := len(sel.Views)

	// offset may be any non-negative int; never form offset+limit unless it is below n
	start := min(p.Offset, n)
	end := start + min(p.Limit, n-start)
	items := sel.Views[start:end]

	var next *int
	if p.Offset < n && p.Limit < n-p.Offset {
		v := p.Offset + p.Limit
		next = &v
	}

	return RoomPage{
		Items: items,
		Meta: PageMeta{
			Total:       len(views),
			Count:       len(items),
			Limit:       p.Limit,
			Offset:      p.Offset,
			NextOffset:  next,
			Reviewed:    sel.Reviewed,
			NeedsReview: sel.NeedsReview,
			SortBy:      p.SortBy,
			SortOrder:   p.SortOrder,
			Filters: FiltersEcho{
				MinConfidence: p.MinConfidence,
				RequireReview: p.RequireReview,
				Category:      p.Category,
				Q:             p.Q,
			},
		},
	}
}

func matches(v RoomView, p QueryParams) bool {
	if v.Confidence < p.MinConfidence {
		return false
	}
	if p.RequireReview && !v.NeedsReview {
		return false
	}
	if p.Q != nil && !strings.Contains(strings.ToLower(v.RawLabel), strings.ToLower(*p.Q)) {
		return false
	}
	if p.Category != nil {
		// an explicit empty filter selects unclassified rooms only
		if *p.Category == "" {
			return v.Category == nil
		}
		if v.Category == nil || !strings.EqualFold(*v.Category, *p.Category) {
			return false
		}
	}
	return true
}

func comparator(by SortBy) func(a, b RoomView) int {
	switch by {
	case SortByRawLabel:
		return func(a, b RoomView) int {
			return strings.Compare(strings.ToLower(a.RawLabel), strings.ToLower(b.RawLabel))
		}
	case SortByCategory:
		return func(a, b RoomView) int {
			if c := strings.Compare(categoryKey(a), categoryKey(b)); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.RawLabel), strings.ToLower(b.RawLabel))
		}
	default:
		return func(a, b RoomView) int {
			if c := cmp.Compare(a.Confidence, b.Confidence); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.RawLabel), strings.ToLower(b.RawLabel))
		}
	}
}

func categoryKey(v RoomView) string {
	if v.Category == nil {
		return ""
	}
	return *v.Category
}
