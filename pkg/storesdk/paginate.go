package storesdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultPageSize is the page size the backend uses for every paginated
// collection endpoint.
const DefaultPageSize = 10

// Page is the normalized result of any collection endpoint. The backend
// answers some endpoints with a DRF-style envelope
// ({count,next,previous,results}) and others with a bare array; both decode
// into a Page so callers never have to sniff the shape themselves.
type Page[T any] struct {
	// Count is the server-reported total across all pages. For bare-array
	// responses it equals len(Items).
	Count int64

	// Next and Previous are the server-provided page URLs, when present.
	Next     string
	Previous string

	Items []T
}

// pageEnvelope mirrors the paginated wire shape for decoding.
type pageEnvelope[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts both the paginated envelope and a bare array.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode list response: %w", err)
		}
		*p = Page[T]{Count: int64(len(items)), Items: items}
		return nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode paginated response: %w", err)
	}
	p.Count = env.Count
	p.Items = env.Results
	if env.Next != nil {
		p.Next = *env.Next
	}
	if env.Previous != nil {
		p.Previous = *env.Previous
	}
	return nil
}

// TotalPages returns the number of pages at the given page size. A zero
// count yields 1 so there is always a valid page to sit on.
func (p Page[T]) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if p.Count <= 0 {
		return 1
	}
	return int((p.Count + int64(pageSize) - 1) / int64(pageSize))
}
