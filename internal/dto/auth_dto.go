package dto

// RegisterRequest creates a new school together with its first admin account.
type RegisterRequest struct {
	SchoolName    string `json:"school_name" validate:"required,min=2,max=255"`
	Slug          string `json:"slug" validate:"required,min=1,max=64"`
	AdminFullName string `json:"admin_full_name" validate:"required,min=2,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest authenticates a user within the resolved tenant.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// TokenPairResponse carries a freshly issued access/refresh pair.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterResponse reports the created tenant and its admin account.
type RegisterResponse struct {
	TenantID   uint              `json:"tenant_id"`
	Slug       string            `json:"slug"`
	Status     string            `json:"status"`
	AdminID    uint              `json:"admin_id"`
	AdminEmail string            `json:"admin_email"`
	Tokens     TokenPairResponse `json:"tokens"`
}
