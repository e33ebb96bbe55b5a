package handlers

import (
	"regexp"
	"time"

	"github.com/Necroforger/dgrouter/exrouter"
	"github.com/bwmarrin/discordgo"

	"github.com/Swagman-cyber/hell/config"
	"github.com/Swagman-cyber/hell/database"
	"github.com/Swagman-cyber/hell/verify"
)

var mentionRe = regexp.MustCompile(`[<@&>]`)

// replyDel - Reply and delete the reply after a delay to keep channels clean
func replyDel(ctx *exrouter.Context, msg string, timer time.Duration) error {
	newMsg, err := ctx.Reply(msg)
	if err != nil {
		return err
	}
	go func() {
		time.Sleep(time.Second * timer)
		ctx.Ses.ChannelMessageDelete(ctx.Msg.ChannelID, newMsg.ID)
	}()
	return nil
}

// adminCheck - Require Manage Server perms for settings commands
func adminCheck(ctx *exrouter.Context) bool {
	perms, err := ctx.Ses.UserChannelPermissions(ctx.Msg.Author.ID, ctx.Msg.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionManageServer == discordgo.PermissionManageServer
}

// roleIDFromMention - Strip mention markup from a role argument
func roleIDFromMention(arg string) string {
	return mentionRe.ReplaceAllString(arg, "")
}

// guildConfig - Build the per-call policy from stored guild settings
func guildConfig(gs database.GuildSettings) verify.GuildConfig {
	return verify.GuildConfig{
		Enabled:         gs.Enabled,
		RoleIDs:         gs.VerifyRoles,
		DefaultRoleName: config.DefaultRoleName,
	}
}

// sessionMembership - Adapts the Discord session to the flow's role contract
type sessionMembership struct {
	s *discordgo.Session
}

func (m sessionMembership) GuildRoles(guildID string) ([]verify.RoleRef, error) {
	roles, err := m.s.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	refs := make([]verify.RoleRef, 0, len(roles))
	for _, r := range roles {
		refs = append(refs, verify.RoleRef{ID: r.ID, Name: r.Name})
	}
	return refs, nil
}

func (m sessionMembership) GrantRole(guildID, userID, roleID string) error {
	return m.s.GuildMemberRoleAdd(guildID, userID, roleID)
}
