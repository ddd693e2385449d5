package handlers

import (
	"errors"
	"fmt"
	"log"

	"spectre-bot/lang"
	"spectre-bot/render"
	"spectre-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

const panelBannerURL = "https://cdn.discordapp.com/banners/1215534857254346782/a_b3c434f165c5cd01f3cfe385f85f07ca.gif"

func panelCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "panel",
		Description:              "Post the ticket panel in this channel",
		DefaultMemberPermissions: &adminPerm,
	}
}

func (h *Handlers) handlePanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed := render.Embed(
		lang.T("ticket_welcome_title"),
		lang.T("ticket_panel"),
		render.ColourPurple,
		panelBannerURL,
	)

	_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "💲 Buy", Style: discordgo.SuccessButton, CustomID: "ticket_open_buy"},
					discordgo.Button{Label: "🔧 Support", Style: discordgo.PrimaryButton, CustomID: "ticket_open_support"},
					discordgo.Button{Label: "🎥 Media Creator", Style: discordgo.SecondaryButton, CustomID: "ticket_open_media"},
				},
			},
		},
	})
	if err != nil {
		respond(s, i, lang.T("unexpected_error", "error", err.Error()), true)
		return
	}
	respond(s, i, "Ticket panel posted!", true)
}

func (h *Handlers) handleTicketOpen(s *discordgo.Session, i *discordgo.InteractionCreate, cat ticket.Category) {
	ch, err := h.tickets.Open(cat, i.Member.User)
	switch {
	case errors.Is(err, ticket.ErrCategoryNotFound):
		respond(s, i, lang.T("category_not_found"), true)
	case errors.Is(err, ticket.ErrDuplicateTicket):
		respond(s, i, lang.T("duplicate_ticket"), true)
	case err != nil:
		log.Printf("[Ticket] open %s for %s: %v", cat, i.Member.User.ID, err)
		respond(s, i, lang.T("unexpected_error", "error", err.Error()), true)
	default:
		respond(s, i, lang.T("ticket_created", "channel", fmt.Sprintf("<#%s>", ch.ID)), true)
	}
}

func (h *Handlers) handleTicketRemember(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := h.tickets.Remember(i.ChannelID)
	switch {
	case errors.Is(err, ticket.ErrNotTicket):
		respond(s, i, lang.T("ticket_not_channel"), true)
	case errors.Is(err, ticket.ErrDMClosed):
		respond(s, i, lang.T("reminder_dm_closed"), true)
	case err != nil:
		respond(s, i, lang.T("unexpected_error", "error", err.Error()), true)
	default:
		respond(s, i, lang.T("reminder_sent"), true)
	}
}

func (h *Handlers) handleTicketClose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ch, err := s.Channel(i.ChannelID)
	if err != nil {
		respond(s, i, lang.T("unexpected_error", "error", err.Error()), true)
		return
	}
	if _, ok := ticket.OwnerID(ch.Topic); !ok {
		respond(s, i, lang.T("ticket_not_channel"), true)
		return
	}

	// Archival can outlive the interaction deadline; defer now, confirm
	// once the archive is packaged.
	deferEphemeral(s, i)

	err = h.tickets.Close(ch, i.Member.User, func() {
		followup(s, i, lang.T("ticket_closed"))
	})
	if err != nil {
		log.Printf("[Ticket] close %s: %v", ch.ID, err)
		followup(s, i, lang.T("unexpected_error", "error", err.Error()))
	}
}
