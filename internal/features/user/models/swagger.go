package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Error message"`
}

// IntervalUpdate represents a reminder interval change request
type IntervalUpdate struct {
	Minutes int `json:"minutes" binding:"required" example:"45"`
}
