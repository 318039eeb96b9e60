package resultview

import (
	"fmt"

	"github.com/slok/blendeval/internal/model"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Page is a slice of the results plus its pagination metadata.
type Page struct {
	Rows         []*model.Row
	Page         int
	PageSize     int
	TotalResults int
	TotalPages   int
}

// Paginate slices the rows into the requested page. Pages out of range
// return no rows, they are not an error.
func Paginate(rows []*model.Row, page, pageSize int) (Page, error) {
	if page < 1 {
		return Page{}, fmt.Errorf("page must be >= 1, got %d: %w", page, model.ErrNotValid)
	}
	if pageSize < 1 {
		return Page{}, fmt.Errorf("page size must be >= 1, got %d: %w", pageSize, model.ErrNotValid)
	}

	total := len(rows)
	p := Page{
		Rows:         []*model.Row{},
		Page:         page,
		PageSize:     pageSize,
		TotalResults: total,
		TotalPages:   (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return p, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	p.Rows = append(p.Rows, rows[start:end]...)

	return p, nil
}
