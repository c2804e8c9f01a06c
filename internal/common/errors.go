// Package common defines shared constants and sentinel errors used across
// the gophauth server and client. Callers should use errors.Is to match these
// values; the error text is the stable, user-facing message for each kind.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Primary authentication failed. Never says whether the identifier or
	// the secret was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Bearer credential lookup, signature or expiry failure. Revoked, expired
	// and never-issued credentials all collapse into this one.
	ErrInvalidCredential = errors.New("invalid credential")

	// Second-factor errors.
	ErrInvalidSecret     = errors.New("invalid second factor secret")
	ErrInvalidCodeFormat = errors.New("invalid one-time code format")
	ErrInvalidOTP        = errors.New("invalid one-time code")

	// Profile errors.
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrProviderMismatch = errors.New("subject is registered with another provider")
)
