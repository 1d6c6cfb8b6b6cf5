package entity

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrNameRequired     = errors.New("name is a required field")
	ErrNoImage          = errors.New("no image provided")
	ErrUnsupportedMedia = errors.New("only image files are allowed")
	ErrFileTooLarge     = errors.New("file too large")
	ErrUnexpectedFile   = errors.New("unexpected file field")
)
