package dto

import "github.com/insurecare/feedback-portal/internal/domain"

// PageResponse is the envelope of every paginated listing.
type PageResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPageResponse converts every item of p with conv.
func NewPageResponse[S, T any](p domain.Page[S], conv func(*S) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, conv(&p.Items[i]))
	}
	return PageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

// Map converts a slice, never returning nil.
func Map[S, T any](items []S, conv func(*S) T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		out = append(out, conv(&items[i]))
	}
	return out
}
