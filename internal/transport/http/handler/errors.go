package handler

const (
	errInternalServer   = "Internal server error"
	errEmailInUse       = "Email already in use"
	errWrongCredentials = "Wrong credentials"
	errTokenInvalid     = "Invalid refresh token"
	errCodeInvalid      = "Invalid or expired reset code"
	errUserNotFound     = "User not found"
)
