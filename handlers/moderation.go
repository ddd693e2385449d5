package handlers

import (
	"fmt"

	"spectre-bot/lang"
	"spectre-bot/render"

	"github.com/bwmarrin/discordgo"
)

func moderationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "ban",
			Description:              "Ban a member from the server",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to ban", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the ban"},
			},
		},
		{
			Name:                     "purge",
			Description:              "Bulk-delete recent messages in this channel",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "How many messages (1-100)", Required: true},
			},
		},
	}
}

func (h *Handlers) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := optStr(opts, "reason", "No reason provided")

	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
		respond(s, i, fmt.Sprintf("Failed to ban: %v", err), true)
		return
	}

	embed := render.Embed("Banned", lang.T("banned", "user", target.Mention()), render.ColourDarkRed, "")
	respondEmbed(s, i, embed, false)
}

func (h *Handlers) handlePurge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	count := int(opts["count"].IntValue())
	if count < 1 || count > 100 {
		respond(s, i, "Count must be between 1 and 100.", true)
		return
	}

	deferEphemeral(s, i)

	n, err := purgeMessages(s, i.ChannelID, count)
	if err != nil {
		followup(s, i, fmt.Sprintf("Failed to purge: %v", err))
		return
	}
	followup(s, i, lang.T("purged", "count", fmt.Sprint(n)))
}

// purgeMessages deletes up to count of the channel's most recent messages.
func purgeMessages(s *discordgo.Session, channelID string, count int) (int, error) {
	msgs, err := s.ChannelMessages(channelID, count, "", "", "")
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	if len(ids) == 1 {
		return 1, s.ChannelMessageDelete(channelID, ids[0])
	}
	return len(ids), s.ChannelMessagesBulkDelete(channelID, ids)
}
