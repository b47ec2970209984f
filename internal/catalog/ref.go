// Package catalog holds pieces shared by the category, subcategory and
// product packages: typed references, list filters and the list cache.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Ref points at a record of type T. It is either a bare reference carrying
// only ID, or an expanded reference that also carries the record.
type Ref[T any] struct {
	ID       string
	Expanded *T
}

// RefTo returns an unexpanded reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// IsExpanded reports whether the record has been resolved.
func (r Ref[T]) IsExpanded() bool {
	return r.Expanded != nil
}

// MarshalJSON encodes an expanded reference as the record and a bare one as its id.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Expanded != nil {
		return json.Marshal(r.Expanded)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts an id string or a record object with an "id" field.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	case len(data) > 0 && data[0] == '{':
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		*r = Ref[T]{ID: probe.ID, Expanded: &record}
		return nil
	default:
		return fmt.Errorf("catalog: reference must be an id string or an object, got %s", data)
	}
}

// Loader fetches records by id. Missing ids are simply absent from the result.
type Loader[T any] func(ctx context.Context, ids []string) (map[string]T, error)

// Populate expands refs in place using a single call to load. References
// whose id load does not return stay unexpanded.
func Populate[T any](ctx context.Context, refs []*Ref[T], load Loader[T]) error {
	seen := make(map[string]struct{}, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == nil || ref.ID == "" {
			continue
		}
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		ids = append(ids, ref.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	records, err := load(ctx, ids)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if rec, ok := records[ref.ID]; ok {
			ref.Expanded = &rec
		}
	}
	return nil
}
