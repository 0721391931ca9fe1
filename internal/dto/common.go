package dto

// PaginatedResult is the uniform shape for resource list responses.
// Items never exceeds PageSize entries and TotalPages is always
// ceil(TotalItems / PageSize).
type PaginatedResult struct {
	Items       interface{} `json:"items"`
	TotalItems  int64       `json:"totalItems"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
	Sort        string      `json:"sort"`
}

// BatchDeleteSummary reports the accounting of a delete-by-list call.
// Failed covers ids that existed but were not removed by the bulk delete.
type BatchDeleteSummary struct {
	Deleted   int    `json:"deleted"`
	NotFound  int    `json:"notFound"`
	Failed    int    `json:"failed"`
	Requested int    `json:"requested"`
	Message   string `json:"message,omitempty"`
}
