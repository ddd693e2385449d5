package automsg

import (
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   map[string][]*discordgo.MessageEmbed
	purged map[string]int
	ops    []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[string][]*discordgo.MessageEmbed), purged: make(map[string]int)}
}

func (f *fakeSender) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[channelID] = append(f.sent[channelID], embed)
	f.ops = append(f.ops, "send:"+channelID)
	return nil
}

func (f *fakeSender) Purge(channelID string, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged[channelID] += limit
	f.ops = append(f.ops, "purge:"+channelID)
	return nil
}

func (f *fakeSender) sentCount(channelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[channelID])
}

func embed(title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title}
}

func TestStartSendsImmediately(t *testing.T) {
	sender := newFakeSender()
	s := New(sender, 5)

	if err := s.Start("c1", embed("nitro"), time.Hour); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sender.sentCount("c1") != 1 {
		t.Errorf("sent = %d, want immediate first send", sender.sentCount("c1"))
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestStartReplacesExistingLoop(t *testing.T) {
	sender := newFakeSender()
	s := New(sender, 5)

	if err := s.Start("c1", embed("nitro"), time.Hour); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := s.Start("c1", embed("decor"), time.Hour); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if s.Len() != 1 {
		t.Errorf("Len = %d, want exactly one loop per channel", s.Len())
	}
	// Both initial sends happened; the running entry is the second one.
	if sender.sentCount("c1") != 2 {
		t.Errorf("sent = %d", sender.sentCount("c1"))
	}
}

func TestLoopsAreIndependent(t *testing.T) {
	sender := newFakeSender()
	s := New(sender, 5)

	_ = s.Start("c1", embed("nitro"), time.Hour)
	_ = s.Start("c2", embed("decor"), time.Hour)

	if s.Len() != 2 {
		t.Fatalf("Len = %d", s.Len())
	}
	if !s.Stop("c1") {
		t.Fatal("Stop(c1) = false")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after stopping c1", s.Len())
	}
	if s.Stop("c1") {
		t.Error("second Stop(c1) should report nothing to stop")
	}
}

func TestStopAllEmpty(t *testing.T) {
	s := New(newFakeSender(), 5)
	if n := s.StopAll(); n != 0 {
		t.Errorf("StopAll = %d, want 0", n)
	}
}

func TestStopAll(t *testing.T) {
	s := New(newFakeSender(), 5)
	_ = s.Start("c1", embed("a"), time.Hour)
	_ = s.Start("c2", embed("b"), time.Hour)

	if n := s.StopAll(); n != 2 {
		t.Errorf("StopAll = %d, want 2", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after StopAll", s.Len())
	}
}

func TestInvalidInterval(t *testing.T) {
	s := New(newFakeSender(), 5)
	if err := s.Start("c1", embed("a"), 0); err == nil {
		t.Error("expected error for zero interval")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestCycleOrderPurgeThenSend(t *testing.T) {
	sender := newFakeSender()
	s := New(sender, 5)
	s.Run()
	defer s.Shutdown()

	if err := s.Start("c1", embed("nitro"), time.Second); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.ops) < 3 {
		t.Fatalf("ops = %v, expected initial send plus at least one cycle", sender.ops)
	}
	if sender.ops[0] != "send:c1" {
		t.Errorf("first op = %s, want the immediate send", sender.ops[0])
	}
	if sender.ops[1] != "purge:c1" || sender.ops[2] != "send:c1" {
		t.Errorf("cycle ops = %v, want purge before send", sender.ops[1:3])
	}
	if sender.purged["c1"]%5 != 0 || sender.purged["c1"] == 0 {
		t.Errorf("purged = %d, want multiples of the bounded limit", sender.purged["c1"])
	}
}
