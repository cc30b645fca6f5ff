package database

import "errors"

var (
	// ErrCodeExists is returned when an attempt is made to insert
	// a link with a short code that is already taken.
	ErrCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no link matches the given short code.
	ErrLinkNotFound = errors.New("link not found")
)
