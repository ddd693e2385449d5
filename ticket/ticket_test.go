package ticket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spectre-bot/catalog"
	"spectre-bot/storage"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	guildChannels []*discordgo.Channel
	channels      map[string]*discordgo.Channel
	events        []string
	failSend      bool
	failDM        bool
	failDMCreate  bool
	nextID        int
}

func newFakeSession() *fakeSession {
	return &fakeSession{channels: make(map[string]*discordgo.Channel), nextID: 100}
}

func (f *fakeSession) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.events = append(f.events, "list")
	return f.guildChannels, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.nextID++
	ch := &discordgo.Channel{
		ID:                   fmt.Sprint(f.nextID),
		Name:                 data.Name,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	f.guildChannels = append(f.guildChannels, ch)
	f.events = append(f.events, "create:"+data.Name)
	return ch, nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return ch, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch := f.channels[channelID]
	delete(f.channels, channelID)
	f.events = append(f.events, "delete:"+channelID)
	return ch, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failDM && strings.HasPrefix(channelID, "dm-") {
		return nil, fmt.Errorf("cannot send messages to this user")
	}
	f.events = append(f.events, "send:"+channelID+":"+content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failSend {
		return nil, fmt.Errorf("send rejected")
	}
	kind := "message"
	if len(data.Files) > 0 {
		kind = "file"
	}
	f.events = append(f.events, "sendcomplex:"+channelID+":"+kind)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.failDMCreate {
		return nil, fmt.Errorf("502: bad gateway")
	}
	ch := &discordgo.Channel{ID: "dm-" + recipientID}
	f.channels[ch.ID] = ch
	return ch, nil
}

type fakeArchiver struct {
	dir  string
	fail bool
}

func (a *fakeArchiver) Archive(channelID, channelName string) (string, error) {
	if a.fail {
		return "", fmt.Errorf("attachment download failed")
	}
	folder := filepath.Join(a.dir, "transcript-"+channelID)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(folder, "transcript.html"), []byte("<html></html>"), 0644); err != nil {
		return "", err
	}
	return folder, nil
}

type recordingDB struct {
	storage.NopDB
	added  []storage.TicketRecord
	closed []string
}

func (r *recordingDB) AddTicket(t storage.TicketRecord) error {
	r.added = append(r.added, t)
	return nil
}

func (r *recordingDB) CloseTicket(channelID, _, _, _ string) error {
	r.closed = append(r.closed, channelID)
	return nil
}

func testManager(t *testing.T, s *fakeSession) (*Manager, *recordingDB) {
	t.Helper()
	db := &recordingDB{}
	m := &Manager{
		Session: s,
		Catalog: catalog.New(nil, map[string]string{
			"spectre-buy-category":           "10",
			"spectre-support-category":       "11",
			"spectre-media-creator-category": "12",
			"spectre-logs-ticket":            "90",
		}),
		DB:          db,
		Archiver:    &fakeArchiver{dir: t.TempDir()},
		GuildID:     "g1",
		StaffRoleID: "555",
	}
	return m, db
}

func alice() *discordgo.User {
	return &discordgo.User{ID: "42", Username: "alice", GlobalName: "Alice"}
}

func TestOpenCreatesRestrictedChannel(t *testing.T) {
	s := newFakeSession()
	m, db := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if ch.Name != "support-alice" {
		t.Errorf("name = %q", ch.Name)
	}
	if ch.ParentID != "11" {
		t.Errorf("parent = %q", ch.ParentID)
	}

	id, ok := OwnerID(ch.Topic)
	if !ok || id != 42 {
		t.Errorf("topic owner = %d ok=%v (topic %q)", id, ok, ch.Topic)
	}
	if _, ok := CreatedAt(ch.Topic); !ok {
		t.Errorf("topic missing creation time: %q", ch.Topic)
	}

	var everyoneDenied, aliceAllowed, staffAllowed bool
	for _, ow := range ch.PermissionOverwrites {
		switch ow.ID {
		case "g1":
			everyoneDenied = ow.Deny&discordgo.PermissionViewChannel != 0
		case "42":
			aliceAllowed = ow.Allow&discordgo.PermissionViewChannel != 0
		case "555":
			staffAllowed = ow.Allow&discordgo.PermissionViewChannel != 0
		}
	}
	if !everyoneDenied || !aliceAllowed || !staffAllowed {
		t.Errorf("overwrites wrong: everyone=%v alice=%v staff=%v", everyoneDenied, aliceAllowed, staffAllowed)
	}

	if len(db.added) != 1 || db.added[0].OwnerID != "42" || db.added[0].Category != "support" {
		t.Errorf("db records = %+v", db.added)
	}
}

func TestOpenDuplicate(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	if _, err := m.Open(CategorySupport, alice()); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_, err := m.Open(CategorySupport, alice())
	if !errors.Is(err, ErrDuplicateTicket) {
		t.Fatalf("second Open = %v, want ErrDuplicateTicket", err)
	}

	created := 0
	for _, e := range s.events {
		if strings.HasPrefix(e, "create:") {
			created++
		}
	}
	if created != 1 {
		t.Errorf("created %d channels, want 1", created)
	}
}

func TestOpenSameUserOtherCategory(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	if _, err := m.Open(CategorySupport, alice()); err != nil {
		t.Fatalf("support Open: %v", err)
	}
	if _, err := m.Open(CategoryBuy, alice()); err != nil {
		t.Fatalf("buy Open should be independent: %v", err)
	}
}

func TestOpenCategoryNotFound(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)
	m.Catalog = catalog.New(nil, nil)

	_, err := m.Open(CategoryBuy, alice())
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err = %v, want ErrCategoryNotFound", err)
	}
	if len(s.events) != 0 {
		t.Errorf("no platform calls expected, got %v", s.events)
	}
}

func TestCloseSequence(t *testing.T) {
	s := newFakeSession()
	m, db := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.events = nil

	acked := false
	closer := &discordgo.User{ID: "99", Username: "operator"}
	if err := m.Close(ch, closer, func() { acked = true }); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !acked {
		t.Error("ack not invoked")
	}
	want := []string{"sendcomplex:90:file", "delete:" + ch.ID}
	if len(s.events) != len(want) {
		t.Fatalf("events = %v, want %v", s.events, want)
	}
	for i := range want {
		if s.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", s.events, want)
		}
	}
	if len(db.closed) != 1 || db.closed[0] != ch.ID {
		t.Errorf("db closed = %v", db.closed)
	}
	if _, ok := s.channels[ch.ID]; ok {
		t.Error("channel still exists after close")
	}
}

func TestCloseArchiveFailureKeepsChannel(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m.Archiver = &fakeArchiver{fail: true}
	s.events = nil

	acked := false
	err = m.Close(ch, &discordgo.User{ID: "99", Username: "op"}, func() { acked = true })
	if err == nil {
		t.Fatal("expected archive error")
	}
	if acked {
		t.Error("ack must not run when archival failed")
	}
	if _, ok := s.channels[ch.ID]; !ok {
		t.Error("channel must survive a failed close")
	}
}

func TestCloseDeliveryFailureKeepsChannel(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.failSend = true

	if err := m.Close(ch, &discordgo.User{ID: "99", Username: "op"}, nil); err == nil {
		t.Fatal("expected delivery error")
	}
	if _, ok := s.channels[ch.ID]; !ok {
		t.Error("channel must survive a failed delivery")
	}
}

func TestRemember(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := m.Remember(ch.ID); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	found := false
	for _, e := range s.events {
		if strings.HasPrefix(e, "send:dm-42:") {
			found = true
		}
	}
	if !found {
		t.Errorf("no DM sent, events = %v", s.events)
	}
}

func TestRememberDMClosed(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.failDM = true

	if err := m.Remember(ch.ID); !errors.Is(err, ErrDMClosed) {
		t.Fatalf("err = %v, want ErrDMClosed", err)
	}
}

func TestRememberDMCreateErrorIsNotDMClosed(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	ch, err := m.Open(CategorySupport, alice())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.failDMCreate = true

	err = m.Remember(ch.ID)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrDMClosed) {
		t.Fatalf("transport error misreported as closed DMs: %v", err)
	}
}

func TestRememberNotATicket(t *testing.T) {
	s := newFakeSession()
	m, _ := testManager(t, s)

	s.channels["55"] = &discordgo.Channel{ID: "55", Topic: "general chatter"}
	if err := m.Remember("55"); !errors.Is(err, ErrNotTicket) {
		t.Fatalf("err = %v, want ErrNotTicket", err)
	}
}
