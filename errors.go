// Package boomerang holds the error kinds shared by the credential packages.
//
// Every package in this module wraps one of these sentinels with
// github.com/pkg/errors, so callers classify failures with errors.Is.
package boomerang

import "github.com/pkg/errors"

var (
	// ErrMalformedInput reports bytes that do not decode to a valid
	// point, scalar or message.
	ErrMalformedInput = errors.New("malformed input")

	// ErrVerificationFailed reports a proof or signature that does not verify.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrInvalidChallenge reports a challenge outside the expected set.
	ErrInvalidChallenge = errors.New("invalid challenge")

	// ErrProtocolMisuse reports calls made out of order, reused state or
	// inputs that break a protocol precondition.
	ErrProtocolMisuse = errors.New("protocol misuse")
)
