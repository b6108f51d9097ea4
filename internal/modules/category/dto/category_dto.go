package dto

// CreateCategoryRequest is the admin form for adding a feed category. The
// slug is derived from Name server-side, so only the display fields come in.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
}
