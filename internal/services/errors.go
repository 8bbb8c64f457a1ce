package services

import "errors"

// Error variables
var (
	ErrValidation         = errors.New("validation error")
	ErrUserAlreadyExists  = errors.New("email already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
