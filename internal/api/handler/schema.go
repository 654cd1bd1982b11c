package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Login    string `json:"login"    validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token        string `json:"token"`
	UserID       int64  `json:"user_id"`
	Login        string `json:"login"`
	Role         string `json:"role"`
	IsFirstLogin bool   `json:"is_first_login"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type claimsResponse struct {
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

type meResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	IsFirstLogin bool   `json:"is_first_login"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Admin ---

type createUserRequest struct {
	Login    string `json:"login"    validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	RoleID   int64  `json:"role_id"  validate:"required,gt=0"`
}

type createUserResponse struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type updateUserRequest struct {
	Login     *string `json:"login,omitempty"      validate:"omitempty,max=50"`
	RoleID    *int64  `json:"role_id,omitempty"    validate:"omitempty,gt=0"`
	IsBlocked *bool   `json:"is_blocked,omitempty"`
}

type resultResponse struct {
	Message string `json:"message"`
	Changed bool   `json:"changed"`
}

type resetPasswordRequest struct {
	Login string `json:"login" validate:"required,max=50"`
}

type resetPasswordResponse struct {
	Login             string `json:"login"`
	TemporaryPassword string `json:"temporary_password"`
}

type userResponse struct {
	UserID         int64      `json:"user_id"`
	Login          string     `json:"login"`
	RoleID         int64      `json:"role_id"`
	Role           string     `json:"role"`
	IsBlocked      bool       `json:"is_blocked"`
	State          string     `json:"state"`
	FailedAttempts int        `json:"failed_attempts"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	FirstLogin     bool       `json:"first_login"`
}

type roleResponse struct {
	RoleID      int64  `json:"role_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
