package admin

import "errors"

var (
	ErrInvalidBody  = errors.New("invalid request body")
	ErrInvalidID    = errors.New("invalid tenant id")
	ErrInvalidQuery = errors.New("invalid query parameter")
	ErrValidation   = errors.New("request validation failed")
)
