package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthenticated   = errors.New("credential rejected")
	ErrForbidden         = errors.New("action forbidden")
	ErrUserAlreadyExists = errors.New("username already taken")
	ErrOwnEnroll         = errors.New("instructor cannot enroll in own course")
	ErrInvalidRole       = errors.New("invalid role")
	ErrEmptyQuery        = errors.New("empty query")
)
