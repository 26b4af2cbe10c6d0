package stats

// Paginate returns items[(page-1)*pageSize : page*pageSize] clamped to the
// slice. Pages past the end, and non-positive page or size, yield an empty
// slice.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 || page-1 >= TotalPages(len(items), pageSize) {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(items)-start)
	return items[start:end]
}

func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Page is the list envelope shared by every paginated endpoint.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

func NewPage[T any](items []T, page, pageSize int) Page[T] {
	pages := TotalPages(len(items), pageSize)
	return Page[T]{
		Items:      Paginate(items, page, pageSize),
		Page:       page,
		PageSize:   pageSize,
		Total:      len(items),
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}
