package ports

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInventoryFull = errors.New("inventory full")
)
