package github

import (
	"errors"
	"fmt"
)

// Sentinel errors for GitHub contribution lookups.
var (
	ErrUserNotFound    = errors.New("github: user not found")
	ErrNoData          = errors.New("github: no contribution data found")
	ErrRateLimited     = errors.New("github: rate limited by server")
	ErrUnauthorized    = errors.New("github: token rejected")
	ErrServer          = errors.New("github: server error")
	ErrInvalidUsername = errors.New("github: invalid username")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op       string // "graphql" or "scrape"
	Username string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("github %s [%s]: %v", e.Op, e.Username, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, username string, err error) error {
	return &Error{
		Op:       op,
		Username: username,
		Err:      err,
	}
}
