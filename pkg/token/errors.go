package token

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedToken matches every *DecodeError via errors.Is.
	ErrMalformedToken = errors.New("malformed token")

	// ErrEmptyToken is wrapped by a DecodeError for blank input.
	ErrEmptyToken = errors.New("empty token")
)

// DecodeError reports a token that cannot be parsed into claims.
type DecodeError struct {
	Err error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode token: %v", e.Err)
}

// Unwrap returns the underlying parser error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedToken.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedToken
}
