package model

import "time"

// Platform represents one deployed training platform, e.g. a shop-floor
// simulator installation. Question banks hang off a platform.
type Platform struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePlatformRequest is the payload for registering a platform.
type CreatePlatformRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=191"`
	Description string `json:"description" binding:"omitempty"`
}

// UpdatePlatformRequest is the payload for updating a platform.
type UpdatePlatformRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=191"`
	Description string `json:"description" binding:"omitempty"`
}
