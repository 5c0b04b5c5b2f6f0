package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityDecode     = errors.New("failed to extract identity")

	// Token errors
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token expired")
	ErrRefreshTokenUnavailable = errors.New("refresh token unavailable")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrNotRetryable   = errors.New("request cannot be retried")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
