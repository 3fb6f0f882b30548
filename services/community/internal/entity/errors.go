package entity

import "errors"

// Sentinel errors for community operations. Wrap with fmt.Errorf("%w: ...")
// and check with errors.Is.
var (
	// ErrValidation is a client-side precondition failure; the backend was not contacted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested post or comment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBackend wraps a failed read or write against the data store.
	ErrBackend = errors.New("backend request failed")

	// ErrUpload indicates the image could not be stored; no post was written.
	ErrUpload = errors.New("image upload failed")

	// ErrForbidden indicates the session user does not own the post.
	ErrForbidden = errors.New("forbidden")
)
