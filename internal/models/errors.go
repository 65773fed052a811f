package models

import "errors"

// Input validation failures. All recoverable: the caller is told to resubmit
// with a corrected image.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrPayloadTooLarge   = errors.New("image exceeds the maximum allowed size")
	ErrCorruptImage      = errors.New("image could not be decoded")
)

// ErrInference covers any failure inside the model runtime. The request fails,
// the process keeps serving.
var ErrInference = errors.New("could not analyze the image")

// Auth and record access failures.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrRecordNotFound     = errors.New("prediction record not found")
	ErrUserNotFound       = errors.New("user not found")
)
