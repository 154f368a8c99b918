package dto

// UpdateStatusRequest payload for the admin status transition.
type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
