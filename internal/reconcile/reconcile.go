// Package reconcile merges raw optimizer result rows with resolved reference names.
package reconcile

import (
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/reference"
)

// DefaultIDField is the result row field holding the reference item ID.
const DefaultIDField = "material_id"

// CollectIDs returns the sorted distinct reference IDs found on the rows field.
// Rows without the field or with a non integer value are ignored.
func CollectIDs(rows []*model.Row, field string) []int64 {
	ids := []int64{}
	for _, row := range rows {
		v, ok := row.Get(field)
		if !ok {
			continue
		}
		id, ok := v.AsInt()
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return reference.Distinct(ids)
}

// Enrich returns copies of the rows with the ID field replaced by the resolved name.
// IDs without name are left with their raw value, the received rows are never mutated.
func Enrich(rows []*model.Row, field string, names map[int64]string) []*model.Row {
	out := make([]*model.Row, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}

		cp := row.Clone()
		if v, ok := cp.Get(field); ok {
			if id, ok := v.AsInt(); ok {
				if name, ok := names[id]; ok {
					cp.Set(field, model.String(name))
				}
			}
		}
		out = append(out, cp)
	}
	return out
}
