package schema

// PaginatedResponse represents a unified paginated API response
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse
type PaginationMetadata struct {
	Offset        int `json:"offset"`
	Limit         int `json:"limit"`
	TotalCount    int `json:"total_count"`
	IncludedCount int `json:"included_count"`
}

// BuildPaginatedResponse builds a unified paginated API response.
// A nil data slice is sent as an empty JSON array.
func BuildPaginatedResponse[T any](offset, limit, totalCount int, data []T) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Pagination: &PaginationMetadata{
			Offset:        offset,
			Limit:         limit,
			TotalCount:    totalCount,
			IncludedCount: len(data),
		},
		Data: data,
	}
}
