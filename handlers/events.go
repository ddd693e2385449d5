package handlers

import (
	"fmt"
	"log"
	"time"

	"spectre-bot/render"

	"github.com/bwmarrin/discordgo"
)

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// sendToNamed delivers an embed to a catalog-named channel; a missing
// catalog entry just disables the feature.
func (h *Handlers) sendToNamed(s embedSender, name string, embed *discordgo.MessageEmbed) {
	channelID, err := h.catalog.Channel(name)
	if err != nil {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("[Events] send to %s: %v", name, err)
	}
}

func (h *Handlers) handleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil {
		return
	}

	days := 0
	if created, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		days = int(time.Since(created).Hours() / 24)
	}

	embed := render.Embed(
		"Member join",
		fmt.Sprintf("%s | %s\n**Creation:** %d days ago", m.User.Mention(), m.User.Username, days),
		render.ColourGreen,
		"",
	)
	h.sendToNamed(s, "spectre-wellcome", embed)
}

func (h *Handlers) handleMemberLeave(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}

	embed := render.Embed(
		"Member left",
		fmt.Sprintf("%s | %s", m.User.Mention(), m.User.Username),
		render.ColourRed,
		"",
	)
	h.sendToNamed(s, "spectre-left", embed)
}

func (h *Handlers) handleMessageEdit(s *discordgo.Session, m *discordgo.MessageUpdate) {
	h.messageEdited(s, m)
}

func (h *Handlers) messageEdited(s embedSender, m *discordgo.MessageUpdate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	before := "(not cached)"
	if m.BeforeUpdate != nil {
		before = m.BeforeUpdate.Content
	}

	embed := render.Embed(
		"Message edited",
		fmt.Sprintf("**Before:** ```%s```\n**After:** ```%s```\n\n**Message ID:** %s\n**Channel:** <#%s>\n**User ID:** %s",
			before, m.Content, m.ID, m.ChannelID, m.Author.ID),
		render.ColourOrange,
		"",
	)
	embed.Author = &discordgo.MessageEmbedAuthor{Name: m.Author.Username, IconURL: m.Author.AvatarURL("")}
	h.sendToNamed(s, "spectre-anti", embed)
}

func (h *Handlers) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	h.messageDeleted(s, m)
}

func (h *Handlers) messageDeleted(s embedSender, m *discordgo.MessageDelete) {
	deleted := m.BeforeDelete
	if deleted == nil || deleted.Author == nil || deleted.Author.Bot {
		return
	}

	embed := render.Embed(
		"Message deleted",
		fmt.Sprintf("**Content:** ```%s```\n\n**Message ID:** %s\n**Channel:** <#%s>\n**User ID:** %s",
			deleted.Content, m.ID, m.ChannelID, deleted.Author.ID),
		render.ColourRed,
		"",
	)
	embed.Author = &discordgo.MessageEmbedAuthor{Name: deleted.Author.Username, IconURL: deleted.Author.AvatarURL("")}
	h.sendToNamed(s, "spectre-anti", embed)
}
