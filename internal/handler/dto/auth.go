package dto

import "github.com/shelfmark/shelfmark/internal/model"

// LoginRequest carries a verified social identity. The OAuth2 token
// exchange with the provider happens upstream of this API.
type LoginRequest struct {
	Provider string `json:"provider" validate:"required"`
	SocialID string `json:"social_id" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Nickname string `json:"nickname"`
}

// LoginResponse returns the issued session token and the provisioned
// user. The token is shown exactly once.
type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
