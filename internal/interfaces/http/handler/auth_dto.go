package handler

// SignUpRequest is the registration body
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=200" example:"alice@campus.edu"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	FullName string `json:"full_name" binding:"max=100" example:"Alice Chen"`
}

// SignInRequest is the sign-in body
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@campus.edu"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// RefreshTokenRequest carries the refresh token to rotate
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SignOutRequest optionally carries the refresh token to revoke with the session
type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest is a partial profile update; omitted fields are unchanged
type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=30"`
	FullName  *string `json:"full_name" binding:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
}
