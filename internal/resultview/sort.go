// Package resultview orders and paginates dynamically shaped result rows.
package resultview

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/slok/blendeval/internal/model"
)

// Order is the sorting direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder parses an order, empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("invalid order %q, must be asc or desc: %w", s, model.ErrNotValid)
}

// Sort returns a new slice with the rows ordered by the value at the dotted path.
//
// Values that coerce to numbers are compared numerically and rank before the
// rest, which are compared lexically using their string form. Descending
// reverses that order. Rows where the path is missing or null always go last,
// on both directions. Ties keep their input order.
func Sort(rows []*model.Row, path string, order Order) []*model.Row {
	type keyed struct {
		row     *model.Row
		v       model.Value
		present bool
	}

	ks := make([]keyed, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Lookup(path)
		ks = append(ks, keyed{row: r, v: v, present: ok && !v.IsNull()})
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if !a.present {
			return false
		}
		if !b.present {
			return true
		}

		c := Compare(a.v, b.v)
		if order == OrderDesc {
			c = -c
		}
		return c < 0
	})

	out := make([]*model.Row, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.row)
	}
	return out
}

// Compare compares two values, numerically when both coerce to numbers.
// A number is always lower than a value that is not.
func Compare(a, b model.Value) int {
	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	switch {
	case aok && bok:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}

	return strings.Compare(a.String(), b.String())
}

func toNumber(v model.Value) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	s, ok := v.AsString()
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
