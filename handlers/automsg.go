package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"spectre-bot/catalog"
	"spectre-bot/lang"
	"spectre-bot/render"

	"github.com/bwmarrin/discordgo"
)

func automsgCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "automsg",
			Description:              "Manage automatic product broadcasts",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name: "start", Description: "Start a product broadcast loop",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "product", Description: "Product code", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "interval", Description: "Interval in seconds", Required: true},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Destination channel (default: the product's channel)"},
					},
				},
				{
					Name: "startall", Description: "Start broadcasts for every catalogued product",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "interval", Description: "Interval in seconds", Required: true},
					},
				},
				{
					Name: "stop", Description: "Stop one broadcast loop, or all of them",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Destination to stop (default: all)"},
					},
				},
			},
		},
	}
}

func (h *Handlers) handleAutoMsgCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "start":
		h.handleAutoMsgStart(s, i, sub.Options)
	case "startall":
		h.handleAutoMsgStartAll(s, i, sub.Options)
	case "stop":
		h.handleAutoMsgStop(s, i, sub.Options)
	}
}

func (h *Handlers) handleAutoMsgStart(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	om := subOptMap(opts)
	code := om["product"].StringValue()
	interval := time.Duration(om["interval"].IntValue()) * time.Second

	product, err := h.catalog.Product(code)
	if err != nil {
		respond(s, i, lang.T("product_not_found", "product", code), true)
		return
	}

	dest := product.ChannelID
	if c, ok := om["channel"]; ok {
		dest = c.ChannelValue(s).ID
	}
	if dest == "" {
		dest = i.ChannelID
	}

	if err := h.startBroadcast(dest, product, interval); err != nil {
		respond(s, i, lang.T("unexpected_error", "error", err.Error()), true)
		return
	}
	respond(s, i, lang.T("automsg_started", "channel", fmt.Sprintf("<#%s>", dest), "interval", interval.String()), true)
}

func (h *Handlers) handleAutoMsgStartAll(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	om := subOptMap(opts)
	interval := time.Duration(om["interval"].IntValue()) * time.Second

	codes := h.catalog.ProductCodes()
	if len(codes) == 0 {
		respond(s, i, lang.T("product_not_found", "product", "*"), true)
		return
	}

	var started, failed []string
	for _, code := range codes {
		product, err := h.catalog.Product(code)
		if err != nil {
			continue
		}
		if err := h.startBroadcast(product.ChannelID, product, interval); err != nil {
			log.Printf("[AutoMsg] startall %s: %v", code, err)
			failed = append(failed, code)
			continue
		}
		started = append(started, code)
	}

	msg := fmt.Sprintf("Started %d broadcast(s): %s", len(started), strings.Join(started, ", "))
	if len(failed) > 0 {
		msg += fmt.Sprintf("\nFailed: %s", strings.Join(failed, ", "))
	}
	respond(s, i, msg, true)
}

func (h *Handlers) handleAutoMsgStop(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	om := subOptMap(opts)

	if c, ok := om["channel"]; ok {
		dest := c.ChannelValue(s).ID
		if !h.automsg.Stop(dest) {
			respond(s, i, lang.T("automsg_none"), true)
			return
		}
		respond(s, i, lang.T("automsg_stopped", "channel", fmt.Sprintf("<#%s>", dest)), true)
		return
	}

	if h.automsg.StopAll() == 0 {
		respond(s, i, lang.T("automsg_none"), true)
		return
	}
	respond(s, i, lang.T("automsg_stopped_all"), true)
}

func (h *Handlers) startBroadcast(dest string, product catalog.Product, interval time.Duration) error {
	embed := render.Embed(product.Title, product.Description, render.ColourPurple, product.ImageURL)
	return h.automsg.Start(dest, embed, interval)
}
