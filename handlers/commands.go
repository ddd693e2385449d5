package handlers

import (
	"log"

	"spectre-bot/automsg"
	"spectre-bot/catalog"
	"spectre-bot/config"
	"spectre-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

var adminPerm = int64(discordgo.PermissionAdministrator)

// Handlers wires interaction and gateway events to the core components.
type Handlers struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	tickets *ticket.Manager
	automsg *automsg.Scheduler
}

func New(cfg *config.Config, cat *catalog.Catalog, tickets *ticket.Manager, sched *automsg.Scheduler) *Handlers {
	return &Handlers{cfg: cfg, catalog: cat, tickets: tickets, automsg: sched}
}

func (h *Handlers) Commands() []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0)
	cmds = append(cmds, panelCommand())
	cmds = append(cmds, automsgCommands()...)
	cmds = append(cmds, moderationCommands()...)
	return cmds
}

func (h *Handlers) Register(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID == "" {
			return
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			h.handleSlashCommand(s, i)
		case discordgo.InteractionMessageComponent:
			h.handleComponent(s, i)
		}
	})

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})
	s.AddHandler(h.handleMemberJoin)
	s.AddHandler(h.handleMemberLeave)
	s.AddHandler(h.handleMessageEdit)
	s.AddHandler(h.handleMessageDelete)
}

func (h *Handlers) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch name := i.ApplicationCommandData().Name; name {
	case "panel":
		h.handlePanel(s, i)
	case "automsg":
		h.handleAutoMsgCommand(s, i)
	case "purge":
		h.handlePurge(s, i)
	case "ban":
		h.handleBan(s, i)
	default:
		log.Printf("Unknown command: %s", name)
	}
}

func (h *Handlers) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch customID := i.MessageComponentData().CustomID; customID {
	case "ticket_open_buy":
		h.handleTicketOpen(s, i, ticket.CategoryBuy)
	case "ticket_open_support":
		h.handleTicketOpen(s, i, ticket.CategorySupport)
	case "ticket_open_media":
		h.handleTicketOpen(s, i, ticket.CategoryMediaCreator)
	case "ticket_remember":
		h.handleTicketRemember(s, i)
	case "ticket_close":
		h.handleTicketClose(s, i)
	default:
		log.Printf("Unknown component: %s", customID)
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.Printf("Failed to respond: %v", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		m[opt.Name] = opt
	}
	return m
}

func subOptMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func optStr(m map[string]*discordgo.ApplicationCommandInteractionDataOption, key, def string) string {
	if o, ok := m[key]; ok {
		return o.StringValue()
	}
	return def
}
