// Package ticket owns the ticket lifecycle: opening a restricted channel for
// a requester, reminding the owner, and closing with transcript archival.
package ticket

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spectre-bot/catalog"
	"spectre-bot/lang"
	"spectre-bot/render"
	"spectre-bot/storage"
	"spectre-bot/transcript"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrCategoryNotFound = errors.New("ticket: category not found")
	ErrDuplicateTicket  = errors.New("ticket: already open")
	ErrNotTicket        = errors.New("ticket: not a ticket channel")
	ErrDMClosed         = errors.New("ticket: direct messages disabled")
)

// Category is the closed set of ticket kinds the panel offers.
type Category string

const (
	CategoryBuy          Category = "buy"
	CategorySupport      Category = "support"
	CategoryMediaCreator Category = "media-creator"
)

// RegistryKey is the catalog name of the Discord category channels of this
// kind are created under.
func (c Category) RegistryKey() string {
	return "spectre-" + string(c) + "-category"
}

// Session is the slice of the platform client the manager needs. Signatures
// mirror discordgo so *discordgo.Session satisfies it directly.
type Session interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Archiver produces the transcript folder for a channel.
type Archiver interface {
	Archive(channelID, channelName string) (string, error)
}

type Manager struct {
	Session     Session
	Catalog     *catalog.Catalog
	DB          storage.Database
	Archiver    Archiver
	GuildID     string
	StaffRoleID string
	// DeleteDelay is the settle time between delivering the archive and
	// deleting the channel.
	DeleteDelay time.Duration
}

// saoPaulo matches the timestamps the previous bot generation stamped into
// channel topics. Falls back to UTC when tzdata is unavailable.
var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func timestamp() string {
	return time.Now().In(saoPaulo).Format("02/01/2006 15:04:05")
}

// Open provisions a ticket channel for the requester under the category's
// parent grouping. The uniqueness check and the channel creation are two
// separate platform calls; two near-simultaneous clicks by the same user can
// both pass the check and produce duplicate channels. Accepted: the cost is
// one operator deleting a stray channel.
func (m *Manager) Open(cat Category, user *discordgo.User) (*discordgo.Channel, error) {
	parentID, err := m.Catalog.Channel(cat.RegistryKey())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cat, ErrCategoryNotFound)
	}

	name := fmt.Sprintf("%s-%s", cat, user.Username)
	existing, err := m.Session.GuildChannels(m.GuildID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	for _, ch := range existing {
		if ch.ParentID == parentID && ch.Name == name {
			return nil, fmt.Errorf("%s: %w", name, ErrDuplicateTicket)
		}
	}

	created := timestamp()
	display := user.Username
	if user.GlobalName != "" {
		display = user.GlobalName
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: m.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionEmbedLinks | discordgo.PermissionReadMessageHistory,
		},
	}
	if m.StaffRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    m.StaffRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionReadMessageHistory | discordgo.PermissionManageMessages,
		})
	}

	ch, err := m.Session.GuildChannelCreateComplex(m.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                EncodeTopic(display, user.ID, created),
		ParentID:             parentID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	if err := m.DB.AddTicket(storage.TicketRecord{
		ChannelID: ch.ID,
		GuildID:   m.GuildID,
		OwnerID:   user.ID,
		OwnerName: user.Username,
		Category:  string(cat),
		CreatedAt: created,
	}); err != nil {
		log.Printf("[Ticket] recording ticket %s: %v", ch.ID, err)
	}

	content := user.Mention()
	if m.StaffRoleID != "" {
		content = fmt.Sprintf("<@&%s> %s", m.StaffRoleID, user.Mention())
	}
	embed := render.Embed(
		lang.T("ticket_welcome_title"),
		lang.T("ticket_welcome", "user", user.Mention()),
		render.ColourPurple,
		"",
	)
	_, err = m.Session.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "🕒 Remember", Style: discordgo.SecondaryButton, CustomID: "ticket_remember"},
					discordgo.Button{Label: "❌ Close", Style: discordgo.DangerButton, CustomID: "ticket_close"},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[Ticket] welcome message in %s: %v", ch.ID, err)
	}

	return ch, nil
}

// Remember sends the ticket owner a private reminder about their open ticket.
// Returns ErrDMClosed when the owner does not accept direct messages.
func (m *Manager) Remember(channelID string) error {
	ch, err := m.Session.Channel(channelID)
	if err != nil {
		return fmt.Errorf("channel lookup: %w", err)
	}

	ownerID, ok := OwnerID(ch.Topic)
	if !ok {
		return ErrNotTicket
	}

	dm, err := m.Session.UserChannelCreate(strconv.FormatInt(ownerID, 10))
	if err != nil {
		return fmt.Errorf("dm channel: %w", err)
	}
	if _, err := m.Session.ChannelMessageSend(dm.ID, lang.T("reminder", "channel", "<#"+channelID+">")); err != nil {
		return fmt.Errorf("%w: %v", ErrDMClosed, err)
	}
	return nil
}

// Close runs the close sequence in strict order: archive the channel, pack
// the archive, acknowledge via ack, deliver the closure notice plus archive
// to the logging channel, then delete the channel after DeleteDelay. A
// failure at any step aborts before deletion, leaving the channel intact for
// a manual retry.
func (m *Manager) Close(ch *discordgo.Channel, closer *discordgo.User, ack func()) error {
	folder, err := m.Archiver.Archive(ch.ID, ch.Name)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	zipPath, err := transcript.Pack(folder)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	if ack != nil {
		ack()
	}

	logChannel, err := m.Catalog.Channel("spectre-logs-ticket")
	if err != nil {
		return fmt.Errorf("log channel: %w", err)
	}

	openedBy := "unknown"
	if id, ok := OwnerID(ch.Topic); ok {
		openedBy = fmt.Sprintf("<@%d>", id)
	}
	openedAt, ok := CreatedAt(ch.Topic)
	if !ok {
		openedAt = "unknown"
	}

	embed := render.Embed(
		"Ticket Closed",
		fmt.Sprintf("✅ **Opened by:** %s\n⏰ **Data:** %s\n\n❌ **Closed by:** %s\n⏰ **Data:** %s\n\n📰 **Transcript \t ⤵️**",
			openedBy, openedAt, closer.Mention(), timestamp()),
		render.ColourRed,
		"",
	)

	f, err := os.Open(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	_, err = m.Session.ChannelMessageSendComplex(logChannel, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Files: []*discordgo.File{
			{Name: filepath.Base(zipPath), ContentType: "application/zip", Reader: f},
		},
	})
	if err != nil {
		return fmt.Errorf("deliver archive: %w", err)
	}

	if err := m.DB.CloseTicket(ch.ID, closer.ID, timestamp(), zipPath); err != nil {
		log.Printf("[Ticket] recording close of %s: %v", ch.ID, err)
	}

	// Let the upload settle before the channel disappears. The handler runs
	// on its own goroutine, so this blocks nobody else.
	time.Sleep(m.DeleteDelay)

	if _, err := m.Session.ChannelDelete(ch.ID); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
