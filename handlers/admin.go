package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Necroforger/dgrouter/exrouter"
	"github.com/bwmarrin/discordgo"

	"github.com/Swagman-cyber/hell/database"
	"github.com/Swagman-cyber/hell/logging"
)

// ToggleHandler - Enable or disable verification for the guild
func ToggleHandler(ctx *exrouter.Context) {
	if !adminCheck(ctx) {
		replyDel(ctx, "You need Manage Server perms to change verification settings.", 15)
		return
	}

	arg := strings.ToLower(ctx.Args.Get(1))
	if arg != "on" && arg != "off" {
		replyDel(ctx, "Usage: `verification on` or `verification off`.", 15)
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, fmt.Sprintf("An error occured while fetching guild settings.\n```%v```", err), 15)
		return
	}

	guildSettings.Enabled = arg == "on"
	if err := store.UpdateGuildSettings(guildSettings); err != nil {
		replyDel(ctx, "Failed to update guild settings.", 15)
		return
	}
	replyDel(ctx, fmt.Sprintf("Done! Verification is now `%v`.", arg), 15)
}

// RoleAddHandler - Append a role to the guild's verified-role candidates
func RoleAddHandler(ctx *exrouter.Context) {
	if !adminCheck(ctx) {
		replyDel(ctx, "You need Manage Server perms to change verification settings.", 15)
		return
	}

	role := resolveRoleArg(ctx)
	if role == nil {
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, fmt.Sprintf("An error occured while fetching guild settings.\n```%v```", err), 15)
		return
	}

	for _, id := range guildSettings.VerifyRoles {
		if id == role.ID {
			replyDel(ctx, fmt.Sprintf("`%v` is already a verified role.", role.Name), 15)
			return
		}
	}

	guildSettings.VerifyRoles = append(guildSettings.VerifyRoles, role.ID)
	if err := store.UpdateGuildSettings(guildSettings); err != nil {
		replyDel(ctx, "Failed to update guild settings.", 15)
		return
	}
	replyDel(ctx, fmt.Sprintf("Done! `%v` will now be granted on verification.", role.Name), 15)
}

// RoleRemoveHandler - Remove a role from the candidates
func RoleRemoveHandler(ctx *exrouter.Context) {
	if !adminCheck(ctx) {
		replyDel(ctx, "You need Manage Server perms to change verification settings.", 15)
		return
	}

	role := resolveRoleArg(ctx)
	if role == nil {
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, fmt.Sprintf("An error occured while fetching guild settings.\n```%v```", err), 15)
		return
	}

	kept := guildSettings.VerifyRoles[:0]
	found := false
	for _, id := range guildSettings.VerifyRoles {
		if id == role.ID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		replyDel(ctx, fmt.Sprintf("`%v` is not a verified role on this server.", role.Name), 15)
		return
	}

	guildSettings.VerifyRoles = kept
	if err := store.UpdateGuildSettings(guildSettings); err != nil {
		replyDel(ctx, "Failed to update guild settings.", 15)
		return
	}
	replyDel(ctx, fmt.Sprintf("Done! `%v` is no longer a verified role.", role.Name), 15)
}

// RoleListHandler - Show the configured candidates in grant order
func RoleListHandler(ctx *exrouter.Context) {
	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, fmt.Sprintf("An error occured while fetching guild settings.\n```%v```", err), 15)
		return
	}

	if len(guildSettings.VerifyRoles) == 0 {
		replyDel(ctx, "No verified roles configured. The default role will be granted by name.", 15)
		return
	}

	guildRoles, err := ctx.Ses.GuildRoles(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, "I was not able to get a list of roles on this server.", 15)
		return
	}
	names := make(map[string]string, len(guildRoles))
	for _, r := range guildRoles {
		names[r.ID] = r.Name
	}

	var sb strings.Builder
	sb.WriteString("Verified roles, in grant order:\n")
	for i, id := range guildSettings.VerifyRoles {
		name, ok := names[id]
		if !ok {
			name = "(deleted role)"
		}
		fmt.Fprintf(&sb, "%v. %v\n", i+1, name)
	}
	replyDel(ctx, sb.String(), 30)
}

// MsgHandler - Override the success message, no argument resets it
func MsgHandler(ctx *exrouter.Context) {
	if !adminCheck(ctx) {
		replyDel(ctx, "You need Manage Server perms to change verification settings.", 15)
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, fmt.Sprintf("An error occured while fetching guild settings.\n```%v```", err), 15)
		return
	}

	guildSettings.VerifiedMsg = strings.TrimSpace(strings.Join(ctx.Args[1:], " "))
	if err := store.UpdateGuildSettings(guildSettings); err != nil {
		replyDel(ctx, "Failed to update guild settings.", 15)
		return
	}
	if guildSettings.VerifiedMsg == "" {
		replyDel(ctx, "Done! The success message is back to the default.", 15)
		return
	}
	replyDel(ctx, "Done! The success message has been updated.", 15)
}

// UnburnHandler - Delete one used-code record so an operator can recover a
// user stuck in the verified-but-no-role state
func UnburnHandler(ctx *exrouter.Context) {
	if !adminCheck(ctx) {
		replyDel(ctx, "You need Manage Server perms to do this.", 15)
		return
	}

	code := ctx.Args.Get(1)
	idArg := ctx.Args.Get(2)
	robloxID, err := strconv.ParseInt(idArg, 10, 64)
	if code == "" || err != nil {
		replyDel(ctx, "Usage: `unburn <code> <roblox id>`.", 15)
		return
	}

	if err := store.Unburn(code, robloxID); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			replyDel(ctx, "No used-code record matched.", 15)
			return
		}
		logging.Error("unburn failed: %v", err)
		replyDel(ctx, "Failed to delete the record.", 15)
		return
	}
	logging.Info("used-code record %v/%v deleted by %v", code, robloxID, ctx.Msg.Author.ID)
	replyDel(ctx, "Done! The code can be confirmed again.", 15)
}

// resolveRoleArg parses a role mention argument and finds it in the guild,
// replying on its own when something is off
func resolveRoleArg(ctx *exrouter.Context) *discordgo.Role {
	roleArg := ctx.Args.Get(1)
	if roleArg == "" || !strings.HasPrefix(roleArg, "<@&") {
		replyDel(ctx, "Make sure the role is a mention and is the first argument after this command.", 15)
		return nil
	}
	roleID := roleIDFromMention(roleArg)

	guildRoles, err := ctx.Ses.GuildRoles(ctx.Msg.GuildID)
	if err != nil {
		replyDel(ctx, "I was not able to get a list of roles on this server.", 15)
		return nil
	}

	for _, r := range guildRoles {
		if r.ID == roleID {
			return r
		}
	}
	replyDel(ctx, "I was not able to find the role on this server.", 15)
	return nil
}
