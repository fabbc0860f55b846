package middleware

import "errors"

var (
	errMissingToken  = errors.New("missing bearer token")
	errSigningMethod = errors.New("unexpected signing method")
	errInvalidToken  = errors.New("invalid token")
)
