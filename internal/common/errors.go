// Package common defines shared constants and sentinel errors used across
// the license server and its client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Registry-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrRegistryLoad = errors.New("registry load failed")

	// Lease table errors.
	ErrAlreadyActive = errors.New("license already active")

	// Protocol errors.
	ErrMalformedRequest = errors.New("malformed request")
	ErrRequestTooLarge  = errors.New("request exceeds size limit")

	// Admin API errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
