package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("not found")
	ErrCategoryNotEmpty   = errors.New("category has products")
	ErrUploadFailed       = errors.New("image upload failed")
	ErrMisconfigured      = errors.New("config invalid")
)
