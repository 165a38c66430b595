package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrEmailTaken       = errors.New("email is already in use")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrValidation       = errors.New("validation error")

	ErrEntryNotFound = errors.New("journal entry doesn't exist")
	ErrWrongOwner    = errors.New("entry belongs to another user")
	ErrEmptyUpdate   = errors.New("nothing to update")
	ErrInvalidMood   = errors.New("invalid mood value")

	ErrUpstreamUnavailable = errors.New("insight generator unavailable")
	ErrRateLimited         = errors.New("rate limit exceeded")
)
