package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// Broadcaster adapts a discordgo session to the automsg.Sender interface.
type Broadcaster struct {
	Session *discordgo.Session
}

func (b *Broadcaster) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := b.Session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (b *Broadcaster) Purge(channelID string, limit int) error {
	_, err := purgeMessages(b.Session, channelID, limit)
	return err
}
