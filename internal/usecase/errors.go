package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrBusinessRule          = errors.New("business rule violation")
)

// Provider auth and fetch failures. ErrTokenExpired is the only error that
// triggers a refresh-and-retry; anything unclassified must be ErrProvider.
var (
	ErrNotLinked     = errors.New("provider account not linked")
	ErrRefreshFailed = errors.New("provider token refresh failed")
	ErrTokenExpired  = errors.New("provider token expired")
	ErrProvider      = errors.New("provider request failed")
)

// IsAuthError reports whether err should prompt the user to relink rather than retry.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotLinked) || errors.Is(err, ErrRefreshFailed) || errors.Is(err, ErrTokenExpired)
}
