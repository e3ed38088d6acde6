package pagination

import "math"

// Window is a computed page window.
type Window struct {
	Offset   int
	LastPage int
}

// Meta is the pagination metadata attached to list responses.
type Meta struct {
	Page     int   `json:"page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

// Paginate computes the page window for a total row count. Page and limit
// are assumed positive, validated at the transport edge. A zero total
// yields a zero last page.
func Paginate(total int64, page, limit int) Window {
	w := Window{
		Offset: (page - 1) * limit,
	}

	if total > 0 {
		w.LastPage = int(math.Ceil(float64(total) / float64(limit)))
	}

	return w
}
