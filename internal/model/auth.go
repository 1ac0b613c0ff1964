package model

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthUser is the client-facing projection of a user. The password hash
// never leaves the db/service layers.
type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type VerifyResponse struct {
	User AuthUser `json:"user"`
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
