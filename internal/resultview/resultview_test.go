package resultview_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/resultview"
)

func rowsFromJSON(t *testing.T, data string) []*model.Row {
	t.Helper()
	var rows []*model.Row
	require.NoError(t, json.Unmarshal([]byte(data), &rows))
	return rows
}

func rowsToJSON(t *testing.T, rows []*model.Row) string {
	t.Helper()
	b, err := json.Marshal(rows)
	require.NoError(t, err)
	return string(b)
}

func TestSort(t *testing.T) {
	tests := map[string]struct {
		rows   string
		path   string
		order  resultview.Order
		expOut string
	}{
		"Nested numeric path ascending.": {
			rows:   `[{"a":{"cost":30}},{"a":{"cost":10}},{"a":{"cost":20}}]`,
			path:   "a.cost",
			order:  resultview.OrderAsc,
			expOut: `[{"a":{"cost":10}},{"a":{"cost":20}},{"a":{"cost":30}}]`,
		},
		"Nested numeric path descending.": {
			rows:   `[{"a":{"cost":30}},{"a":{"cost":10}},{"a":{"cost":20}}]`,
			path:   "a.cost",
			order:  resultview.OrderDesc,
			expOut: `[{"a":{"cost":30}},{"a":{"cost":20}},{"a":{"cost":10}}]`,
		},
		"Numeric strings should be compared as numbers.": {
			rows:   `[{"v":"100"},{"v":9},{"v":"20.5"}]`,
			path:   "v",
			order:  resultview.OrderAsc,
			expOut: `[{"v":9},{"v":"20.5"},{"v":"100"}]`,
		},
		"Strings should be compared lexically.": {
			rows:   `[{"n":"PB Fines"},{"n":"Brazil Sinter"},{"n":"Newman Lump"}]`,
			path:   "n",
			order:  resultview.OrderAsc,
			expOut: `[{"n":"Brazil Sinter"},{"n":"Newman Lump"},{"n":"PB Fines"}]`,
		},
		"Numbers should go before text ascending.": {
			rows:   `[{"v":"1a"},{"v":10},{"v":"abc"},{"v":"9"}]`,
			path:   "v",
			order:  resultview.OrderAsc,
			expOut: `[{"v":"9"},{"v":10},{"v":"1a"},{"v":"abc"}]`,
		},
		"Numbers should go after text descending.": {
			rows:   `[{"v":"1a"},{"v":10},{"v":"abc"},{"v":"9"}]`,
			path:   "v",
			order:  resultview.OrderDesc,
			expOut: `[{"v":"abc"},{"v":"1a"},{"v":10},{"v":"9"}]`,
		},
		"Missing and null values should go last ascending.": {
			rows:   `[{"id":1},{"id":2,"a":{"cost":5}},{"id":3,"a":null},{"id":4,"a":{"cost":null}},{"id":5,"a":{"cost":1}}]`,
			path:   "a.cost",
			order:  resultview.OrderAsc,
			expOut: `[{"id":5,"a":{"cost":1}},{"id":2,"a":{"cost":5}},{"id":1},{"id":3,"a":null},{"id":4,"a":{"cost":null}}]`,
		},
		"Missing and null values should go last descending.": {
			rows:   `[{"id":1},{"id":2,"a":{"cost":5}},{"id":3,"a":null},{"id":5,"a":{"cost":1}}]`,
			path:   "a.cost",
			order:  resultview.OrderDesc,
			expOut: `[{"id":2,"a":{"cost":5}},{"id":5,"a":{"cost":1}},{"id":1},{"id":3,"a":null}]`,
		},
		"Ties should keep the input order.": {
			rows:   `[{"id":1,"v":1},{"id":2,"v":0},{"id":3,"v":1},{"id":4,"v":0}]`,
			path:   "v",
			order:  resultview.OrderAsc,
			expOut: `[{"id":2,"v":0},{"id":4,"v":0},{"id":1,"v":1},{"id":3,"v":1}]`,
		},
		"A path missing on every row should keep the input order.": {
			rows:   `[{"id":2},{"id":1}]`,
			path:   "nope.deeper",
			order:  resultview.OrderDesc,
			expOut: `[{"id":2},{"id":1}]`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			rows := rowsFromJSON(t, test.rows)
			in := rowsToJSON(t, rows)

			got := resultview.Sort(rows, test.path, test.order)

			assert.Equal(t, test.expOut, rowsToJSON(t, got))
			assert.Equal(t, in, rowsToJSON(t, rows), "input should not be reordered")
		})
	}
}

func TestSortMixedValuesIgnoresInputOrder(t *testing.T) {
	perms := []string{
		`[{"v":9},{"v":10},{"v":"1a"}]`,
		`[{"v":10},{"v":"1a"},{"v":9}]`,
		`[{"v":"1a"},{"v":9},{"v":10}]`,
		`[{"v":"1a"},{"v":10},{"v":9}]`,
	}

	for _, p := range perms {
		got := resultview.Sort(rowsFromJSON(t, p), "v", resultview.OrderAsc)
		assert.Equal(t, `[{"v":9},{"v":10},{"v":"1a"}]`, rowsToJSON(t, got), p)
	}
}

func TestCompare(t *testing.T) {
	tests := map[string]struct {
		a, b model.Value
		exp  int
	}{
		"Numbers should compare numerically.":        {a: model.Int(9), b: model.Int(10), exp: -1},
		"Numeric strings should compare as numbers.": {a: model.String("10"), b: model.Int(9), exp: 1},
		"A number should be lower than text.":        {a: model.Int(10), b: model.String("1a"), exp: -1},
		"Text should be greater than a number.":      {a: model.String("1a"), b: model.Int(9), exp: 1},
		"Text should compare lexically.":             {a: model.String("1a"), b: model.String("abc"), exp: -1},
		"Equal numbers should be equal.":             {a: model.Number(1.5), b: model.String("1.5"), exp: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, resultview.Compare(test.a, test.b))
		})
	}
}

func TestParseOrder(t *testing.T) {
	tests := map[string]struct {
		in       string
		expOrder resultview.Order
		expErr   bool
	}{
		"Empty should be ascending.":     {in: "", expOrder: resultview.OrderAsc},
		"Case should be ignored.":        {in: "DESC", expOrder: resultview.OrderDesc},
		"Unknown order should fail.":     {in: "up", expErr: true},
		"Ascending should be ascending.": {in: "asc", expOrder: resultview.OrderAsc},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			o, err := resultview.ParseOrder(test.in)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expOrder, o)
		})
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]*model.Row, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, model.NewRow().Set("i", model.Int(int64(i))))
	}

	tests := map[string]struct {
		rows          []*model.Row
		page          int
		pageSize      int
		expFirst      int64
		expLen        int
		expTotalPages int
		expErr        bool
	}{
		"First page should be full.": {
			rows: rows, page: 1, pageSize: 10, expFirst: 0, expLen: 10, expTotalPages: 3,
		},
		"Last page should have the remaining rows.": {
			rows: rows, page: 3, pageSize: 10, expFirst: 20, expLen: 5, expTotalPages: 3,
		},
		"Page out of range should be empty.": {
			rows: rows, page: 4, pageSize: 10, expLen: 0, expTotalPages: 3,
		},
		"No rows should have zero pages.": {
			rows: nil, page: 1, pageSize: 10, expLen: 0, expTotalPages: 0,
		},
		"Invalid page should fail.": {
			rows: rows, page: 0, pageSize: 10, expErr: true,
		},
		"Invalid page size should fail.": {
			rows: rows, page: 1, pageSize: 0, expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, err := resultview.Paginate(test.rows, test.page, test.pageSize)
			if test.expErr {
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			require.NoError(err)

			assert.Len(p.Rows, test.expLen)
			assert.Equal(len(test.rows), p.TotalResults)
			assert.Equal(test.expTotalPages, p.TotalPages)
			if test.expLen > 0 {
				first, _ := p.Rows[0].Get("i")
				assert.Equal(model.Int(test.expFirst), first, fmt.Sprintf("page %d", test.page))
			}
		})
	}
}
