package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the URL alias service

// ErrInvalidURL is returned when the target URL is missing, too long or not an http(s) URL
var ErrInvalidURL = errors.New("invalid URL format")

// ErrInvalidPagination is returned when page or per_page are out of range
var ErrInvalidPagination = errors.New("invalid pagination parameters")

// ErrGenerationExhausted is returned when no unique code was found within the attempt budget
var ErrGenerationExhausted = errors.New("unable to convert long URL into short unique URL")

// ErrAliasNotFound is returned when no alias exists for a code
var ErrAliasNotFound = errors.New("URL not found")

// ErrAliasExpired is returned when an alias outlived its TTL
var ErrAliasExpired = errors.New("URL expired")

// ErrAliasDeactivated is returned when an alias was explicitly deactivated
var ErrAliasDeactivated = errors.New("URL deactivated")

// ErrAliasConflict is returned when the unique index rejects an alias code
var ErrAliasConflict = errors.New("alias code already exists")

// ErrUsernameTaken is returned when creating a user whose username is already registered
var ErrUsernameTaken = errors.New("username already exists")

// ErrInvalidUser is returned when a username or password is empty or too long
var ErrInvalidUser = errors.New("invalid username or password")

// ErrStoreFault wraps any failure of the transactional store.
type ErrStoreFault struct {
	Op  string
	Err error
}

func (e ErrStoreFault) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e ErrStoreFault) Unwrap() error {
	return e.Err
}

// ErrClickRecordingFailed is returned when click recording fails
type ErrClickRecordingFailed struct {
	AliasID uint
	Err     error
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for alias %d: %v", e.AliasID, e.Err)
}

func (e ErrClickRecordingFailed) Unwrap() error {
	return e.Err
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}

// IsStoreFault reports whether err originates from the store.
func IsStoreFault(err error) bool {
	var fault ErrStoreFault
	return errors.As(err, &fault)
}
