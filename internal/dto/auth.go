package dto

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed token and its lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// VisibilityRequest updates the requesting user's profile visibility.
type VisibilityRequest struct {
	ProfileVisibility string `json:"profileVisibility" validate:"required"`
}
