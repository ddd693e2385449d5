// Package render builds the outbound embed payloads the bot sends. It keeps
// the Spectre Store look (footer, colour handling) in one place.
package render

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const footerText = "Spectre Store © 2025"

// Named colours used across the bot, as hex strings so they can also come
// from the catalog untouched.
const (
	ColourPurple  = "#840077"
	ColourGreen   = "#1FFB2F"
	ColourRed     = "#F91607"
	ColourOrange  = "#FB9800"
	ColourDarkRed = "#BF1622"
)

// HexColour parses a "#RRGGBB" (or "RRGGBB") string into the integer colour
// value discordgo expects. Unparseable input yields 0.
func HexColour(s string) int {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseInt(hex, 16, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

// Embed builds a standard Spectre Store embed. imageURL may be empty.
func Embed(title, description, colour, imageURL string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       HexColour(colour),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
	if imageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}
	return e
}
