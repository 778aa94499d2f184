package store

import "errors"

var (
	// ErrNotFound means the referenced listing/review/user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the requester is not the owner/author of the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidID means an identifier is not well-formed, as opposed to
	// well-formed but unresolvable.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidCategory means the listing category is outside the closed set.
	ErrInvalidCategory = errors.New("invalid category")
)
