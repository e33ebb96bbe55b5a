package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Necroforger/dgrouter/exrouter"
	"github.com/bwmarrin/discordgo"

	"github.com/Swagman-cyber/hell/config"
	"github.com/Swagman-cyber/hell/logging"
	"github.com/Swagman-cyber/hell/roblox"
	"github.com/Swagman-cyber/hell/verify"
)

// VerifyHandler - Step 1: resolve the claimed Roblox account and issue a code
func VerifyHandler(ctx *exrouter.Context) {
	if ctx.Msg.Author.Bot || ctx.Msg.GuildID == "" {
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		logging.Error("failed to get guild settings: %v", err)
		replyDel(ctx, "Something went wrong, please try again later.", 15)
		return
	}

	username := ctx.Args.Get(1)
	if username == "" {
		replyDel(ctx, fmt.Sprintf("Please provide your Roblox username. Usage: `%vverify <username>`", config.Prefix), 15)
		return
	}

	res, err := flow.Begin(context.Background(), ctx.Msg.Author.ID, username, guildConfig(guildSettings))
	if err != nil {
		switch {
		case errors.Is(err, verify.ErrDisabled):
			replyDel(ctx, "Verification is currently disabled on this server.", 15)
		case errors.Is(err, verify.ErrAccountNotFound):
			replyDel(ctx, "Roblox user not found.", 15)
		case errors.Is(err, verify.ErrUpstream):
			logging.Warn("roblox lookup failed: %v", err)
			replyDel(ctx, "Failed to fetch Roblox user info. Please try again in a moment.", 15)
		default:
			logging.Error("verify failed: %v", err)
			replyDel(ctx, "Something went wrong, please try again later.", 15)
		}
		return
	}

	// Send instructions with the code and the profile preview
	embed := &discordgo.MessageEmbed{
		Title:       "Roblox Verification",
		URL:         roblox.ProfileURL(res.Account.ID),
		Description: fmt.Sprintf("**Paste this code into your Roblox About Me:**\n`%v`\nThen type `%vconfirm` when you're done.", res.Code, config.Prefix),
		Color:       config.EmbedColor,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: roblox.AvatarURL(res.Account.ID)},
	}
	_, err = ctx.Ses.ChannelMessageSendEmbed(ctx.Msg.ChannelID, embed)
	if err != nil {
		logging.Warn("failed to send verification embed: %v", err)
	}
}

// ConfirmHandler - Step 2: check the profile, burn the code, grant a role
func ConfirmHandler(ctx *exrouter.Context) {
	if ctx.Msg.Author.Bot || ctx.Msg.GuildID == "" {
		return
	}

	// Get guild settings
	guildSettings, err := store.GetGuildSettings(ctx.Msg.GuildID)
	if err != nil {
		logging.Error("failed to get guild settings: %v", err)
		replyDel(ctx, "Something went wrong, please try again later.", 15)
		return
	}

	membership := sessionMembership{s: ctx.Ses}
	res, err := flow.Confirm(context.Background(), membership, ctx.Msg.GuildID, ctx.Msg.Author.ID, guildConfig(guildSettings))
	if err != nil {
		switch {
		case errors.Is(err, verify.ErrNoPending):
			replyDel(ctx, fmt.Sprintf("You need to use `%vverify <username>` first.", config.Prefix), 15)
		case errors.Is(err, verify.ErrCodeNotPresent):
			replyDel(ctx, "Verification code not found in your profile. Double-check your About Me and try again.", 15)
		case errors.Is(err, verify.ErrCodeAlreadyUsed):
			replyDel(ctx, fmt.Sprintf("This code has already been used. Run `%vverify <username>` again to get a fresh one.", config.Prefix), 15)
		case errors.Is(err, verify.ErrNoRoleConfigured):
			replyDel(ctx, "No verified role is configured on this server. Please ask a moderator to set one up.", 15)
		case errors.Is(err, verify.ErrRoleGrantFailed):
			logging.Error("role grant failed for %v: %v", ctx.Msg.Author.ID, err)
			replyDel(ctx, "You are verified, but I could not assign a role. Please contact a moderator.", 30)
		case errors.Is(err, verify.ErrUpstream):
			logging.Warn("roblox profile fetch failed: %v", err)
			replyDel(ctx, "Error while checking your Roblox profile. Please try again in a moment.", 15)
		default:
			logging.Error("confirm failed: %v", err)
			replyDel(ctx, "Something went wrong, please try again later.", 15)
		}
		return
	}

	msg := guildSettings.VerifiedMsg
	if msg == "" {
		msg = fmt.Sprintf(config.DefaultVerifiedMsg, res.Role.Name)
	}
	ctx.Reply(msg)
}
