package config

import (
	"os"
	"time"
)

// Prefix - Command prefix for all bot commands
const Prefix string = "!"

// CodeLength - Number of characters in a verification code
const CodeLength int = 6

// CodeAlphabet - Characters a verification code is drawn from
const CodeAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultRoleName - Role granted when a guild has no roles configured
const DefaultRoleName string = "Citizen"

// DefaultVerifiedMsg - Message sent to a user on successful verification
const DefaultVerifiedMsg string = "You are now verified and have been given the **%v** role!"

// EmbedColor - Color for verification embeds
const EmbedColor int = 0x2ECC71

// Config - Runtime settings loaded from the environment
type Config struct {
	Token           string
	DBPath          string
	CodeSecret      string
	UpstreamTimeout time.Duration
	PendingTTL      time.Duration
}

// Load - Read runtime settings from env vars, with defaults
func Load() Config {
	return Config{
		Token:           os.Getenv("DISCORD_TOKEN"),
		DBPath:          getenv("DB_PATH", "data/data.db"),
		CodeSecret:      os.Getenv("CODE_SECRET"),
		UpstreamTimeout: getdur("UPSTREAM_TIMEOUT", 10*time.Second),
		PendingTTL:      getdur("PENDING_TTL", 0),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
