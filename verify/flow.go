package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Swagman-cyber/hell/database"
	"github.com/Swagman-cyber/hell/roblox"
)

// Directory - The two Roblox lookups the flow needs
type Directory interface {
	ResolveUsername(ctx context.Context, username string) (roblox.User, error)
	Description(ctx context.Context, robloxID int64) (string, error)
}

// Ledger - Durable record of consumed codes
type Ledger interface {
	MarkUsed(code string, robloxID int64, verifier string) error
}

// RoleRef - A role in the target guild
type RoleRef struct {
	ID   string
	Name string
}

// Membership - Guild role listing and role grants
type Membership interface {
	GuildRoles(guildID string) ([]RoleRef, error)
	GrantRole(guildID, userID, roleID string) error
}

// GuildConfig - Per-guild policy passed into the flow on every call, owned by
// the settings store
type GuildConfig struct {
	Enabled bool
	// RoleIDs are tried in order, missing roles skipped
	RoleIDs []string
	// DefaultRoleName is resolved by name when RoleIDs is empty
	DefaultRoleName string
}

// BeginResult - Outcome of a successful Begin
type BeginResult struct {
	Account roblox.User
	Code    string
}

// ConfirmResult - Outcome of a successful Confirm
type ConfirmResult struct {
	RobloxID int64
	Role     RoleRef
}

// Flow - The two-step verification state machine
type Flow struct {
	Dir     Directory
	Ledger  Ledger
	Pending *PendingStore
	Gen     *Generator
	// Timeout bounds each upstream call, 0 leaves the caller's context as is
	Timeout time.Duration
}

// Begin - Resolve the claimed username and issue a code for it. Overwrites any
// previous attempt by the same user.
func (f *Flow) Begin(ctx context.Context, userID, username string, cfg GuildConfig) (BeginResult, error) {
	if !cfg.Enabled {
		return BeginResult{}, ErrDisabled
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	account, err := f.Dir.ResolveUsername(ctx, username)
	if err != nil {
		if errors.Is(err, roblox.ErrUserNotFound) {
			return BeginResult{}, ErrAccountNotFound
		}
		return BeginResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	entry, err := f.Pending.Begin(userID, account.ID)
	if err != nil {
		return BeginResult{}, err
	}
	return BeginResult{Account: account, Code: entry.Code}, nil
}

// Confirm - Check the profile for the issued code, burn it in the ledger, then
// grant a role. The ledger commit happens strictly before the grant attempt,
// so a used-code record exists iff a confirmation was accepted, whether or not
// the grant went through.
func (f *Flow) Confirm(ctx context.Context, m Membership, guildID, userID string, cfg GuildConfig) (ConfirmResult, error) {
	entry, ok := f.Pending.Peek(userID)
	if !ok {
		return ConfirmResult{}, ErrNoPending
	}

	ctx, cancel := f.bound(ctx)
	defer cancel()

	description, err := f.Dir.Description(ctx, entry.RobloxID)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// Case-sensitive containment, the user pasted the code verbatim.
	// Pending entry stays so the user can edit their profile and retry.
	if !strings.Contains(description, entry.Code) {
		return ConfirmResult{}, ErrCodeNotPresent
	}

	verifier := f.Gen.Verifier(userID, entry.RobloxID, entry.Code)
	err = f.Ledger.MarkUsed(entry.Code, entry.RobloxID, verifier)
	if err != nil {
		if errors.Is(err, database.ErrCodeConflict) {
			return ConfirmResult{}, ErrCodeAlreadyUsed
		}
		return ConfirmResult{}, err
	}

	role, err := f.grant(m, guildID, userID, cfg)
	if err != nil {
		// Code is burned already, pending stays for operator triage
		return ConfirmResult{}, err
	}

	f.Pending.Clear(userID)
	return ConfirmResult{RobloxID: entry.RobloxID, Role: role}, nil
}

// grant resolves the candidate roles and grants the first viable one
func (f *Flow) grant(m Membership, guildID, userID string, cfg GuildConfig) (RoleRef, error) {
	guildRoles, err := m.GuildRoles(guildID)
	if err != nil {
		return RoleRef{}, fmt.Errorf("%w: listing guild roles: %v", ErrRoleGrantFailed, err)
	}

	byID := make(map[string]RoleRef, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}

	var candidates []RoleRef
	if len(cfg.RoleIDs) > 0 {
		// Skip roles that no longer exist in the guild
		for _, id := range cfg.RoleIDs {
			if r, ok := byID[id]; ok {
				candidates = append(candidates, r)
			}
		}
	} else if cfg.DefaultRoleName != "" {
		// Name resolution is confined to this fallback, the stored
		// policy always holds stable role IDs
		for _, r := range guildRoles {
			if strings.EqualFold(r.Name, cfg.DefaultRoleName) {
				candidates = append(candidates, r)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return RoleRef{}, ErrNoRoleConfigured
	}

	for _, r := range candidates {
		if err := m.GrantRole(guildID, userID, r.ID); err == nil {
			return r, nil
		}
	}
	return RoleRef{}, ErrRoleGrantFailed
}

func (f *Flow) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.Timeout)
}
