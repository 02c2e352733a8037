// Package businessflow contains the core business logic for vote recording,
// abuse guarding, and leaderboard aggregation.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Profile-related errors
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidDirection = errors.New("vote direction must be like or dislike")

	// Configuration errors. Persistence being absent is a deliberate state
	// (the demo runs storage-free on seed data alone), so it must stay
	// distinguishable from transient storage failures and never be retried.
	ErrPersistenceNotConfigured = errors.New("persistence is not configured")

	// Filter errors
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsInvalidDirection(err error) bool {
	return errors.Is(err, ErrInvalidDirection)
}

func IsPersistenceNotConfigured(err error) bool {
	return errors.Is(err, ErrPersistenceNotConfigured)
}

func IsInvalidLimit(err error) bool {
	return errors.Is(err, ErrInvalidLimit)
}
