package database

import (
	"time"
)

// GuildSettings - DB record for guild settings
type GuildSettings struct {
	ID string
	// Global switch for the verification feature
	Enabled bool
	// Ordered candidate role IDs, first grantable one wins
	VerifyRoles []string
	// Custom success message, empty means the default
	VerifiedMsg string
}

// UsedCode - Ledger record for a consumed verification code
type UsedCode struct {
	// Verifier is the keyed hash stored in place of the raw code,
	// or the raw code itself when no secret is configured
	Verifier string
	UsedAt   time.Time
}
