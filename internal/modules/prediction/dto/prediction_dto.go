package dto

type CreatePredictionRequest struct {
	Topic     string `json:"topic" binding:"required,min=10,max=500"`
	Category  string `json:"category" binding:"required"`
	ExpiresAt string `json:"expires_at" binding:"required"`
}

// ModeratePredictionRequest drives the single admin transition endpoint:
// approve or reject a pending prediction, or resolve an approved one, in
// which case Result is required.
type ModeratePredictionRequest struct {
	Status string  `json:"status" binding:"required,oneof=approved rejected resolved"`
	Result *string `json:"result" binding:"omitempty,oneof=Yes No Maybe"`
}

type ResolvePredictionRequest struct {
	Result string `json:"result" binding:"required,oneof=Yes No Maybe"`
}
