package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ListMeta carries pagination info for list endpoints.
type ListMeta struct {
	Total      int `json:"total" example:"120"`
	Page       int `json:"page" example:"1"`
	Limit      int `json:"limit" example:"50"`
	TotalPages int `json:"total_pages" example:"3"`
}
