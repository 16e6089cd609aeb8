package apperr

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrPersistence   = errors.New("persistence error")
	ErrNotFound      = errors.New("not found")
)
