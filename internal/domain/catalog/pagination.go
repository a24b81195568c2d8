package catalog

// Pagination is the listing metadata returned with every feed page.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalProblems   int  `json:"totalProblems"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Offset is the index of the first row on page (1-based) for the given limit.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}

// NewPagination assumes page >= 1 and limit >= 1.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalProblems:   total,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
