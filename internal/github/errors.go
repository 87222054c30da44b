package github

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOwner  = errors.New("specify either a user or an organization, not both")
	ErrGistsNeedUser = errors.New("gists can only be listed for a user")
	ErrTokenMismatch = errors.New("token does not belong to the specified user")
)

// ListingError is a failed request against the listing API. It is fatal to the run.
type ListingError struct {
	What    string
	URL     string
	Message string
	Err     error
}

func (e *ListingError) Error() string {
	if e.URL != "" && e.Message != "" {
		return fmt.Sprintf("Failed to fetch %s:\n%s", e.URL, e.Message)
	}
	return fmt.Sprintf("Failed to fetch %s: %v", e.What, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

type tokenMismatchError struct {
	user, login string
}

func (e *tokenMismatchError) Error() string {
	return fmt.Sprintf("The user specified (%s) does not match the token used (%s).", e.user, e.login)
}

func (e *tokenMismatchError) Unwrap() error {
	return ErrTokenMismatch
}
