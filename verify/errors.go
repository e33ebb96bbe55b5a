package verify

import "errors"

// Every failure the flow can report. Handlers map these to user-facing
// messages; anything else is an internal error.
var (
	// ErrDisabled - Verification is switched off for the guild
	ErrDisabled = errors.New("verification is disabled")
	// ErrAccountNotFound - The Roblox username did not resolve
	ErrAccountNotFound = errors.New("roblox account not found")
	// ErrUpstream - A Roblox API call failed, safe to retry
	ErrUpstream = errors.New("upstream request failed")
	// ErrNoPending - Confirm without a live pending attempt
	ErrNoPending = errors.New("no pending verification")
	// ErrCodeNotPresent - The code is not in the profile description yet
	ErrCodeNotPresent = errors.New("code not found in profile")
	// ErrCodeAlreadyUsed - The code was consumed before, restart at Begin
	ErrCodeAlreadyUsed = errors.New("code already used")
	// ErrNoRoleConfigured - The policy yielded no grantable role
	ErrNoRoleConfigured = errors.New("no role configured")
	// ErrRoleGrantFailed - Every candidate grant failed, code stays burned
	ErrRoleGrantFailed = errors.New("role grant failed")
)
