package domain

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrContainerNotFound = errors.New("container not found")
	ErrFolderRequired    = errors.New("role must be held by a folder")
)
