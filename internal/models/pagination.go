package models

// PageMeta is the pagination block returned by paginated list endpoints.
// TotalKey names the count field ("totalPosts", "totalRequests").
type PageMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"-"`
	Limit       int   `json:"limit"`
}

// NewPageMeta computes total pages for an offset page.
func NewPageMeta(page, limit int, total int64) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{CurrentPage: page, TotalPages: pages, Total: total, Limit: limit}
}

// JSON renders the block with the count under totalKey.
func (m PageMeta) JSON(totalKey string) map[string]interface{} {
	return map[string]interface{}{
		"currentPage": m.CurrentPage,
		"totalPages":  m.TotalPages,
		totalKey:      m.Total,
		"limit":       m.Limit,
	}
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ClampPage applies the default and maximum page size and returns the offset
// for the resulting page.
func ClampPage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}
