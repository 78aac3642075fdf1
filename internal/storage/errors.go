package storage

import "errors"

var (
	// ErrNotFound means the target record or reference row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the caller is neither the record's creator nor a
	// super admin.
	ErrForbidden = errors.New("operation not allowed for this account")
)
