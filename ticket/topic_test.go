package ticket

import (
	"fmt"
	"testing"
)

func TestTopicRoundTrip(t *testing.T) {
	cases := []struct {
		id string
		ts string
	}{
		{"123456789012345678", "01/04/2025 13:37:00"},
		{"0", "yesterday"},
		{"42", ""},
	}
	for _, c := range cases {
		topic := EncodeTopic("Alice", c.id, c.ts)

		id, ok := OwnerID(topic)
		if !ok {
			t.Fatalf("OwnerID(%q) not found", topic)
		}
		if got := fmt.Sprint(id); got != c.id {
			t.Errorf("OwnerID = %s, want %s", got, c.id)
		}

		ts, ok := CreatedAt(topic)
		if !ok {
			t.Fatalf("CreatedAt(%q) not found", topic)
		}
		if ts != c.ts {
			t.Errorf("CreatedAt = %q, want %q", ts, c.ts)
		}
	}
}

func TestTopicNotARecord(t *testing.T) {
	for _, topic := range []string{
		"",
		"general chat about products",
		"Ticket of Bob | missing labels here",
		"User ID: not-a-number | Created at: now",
	} {
		if id, ok := OwnerID(topic); ok {
			t.Errorf("OwnerID(%q) = %d, expected not found", topic, id)
		}
	}
	if _, ok := CreatedAt("no labels at all"); ok {
		t.Error("CreatedAt on plain topic should be not found")
	}
}

func TestOwnerIDRejectsNegative(t *testing.T) {
	if _, ok := OwnerID("x | User ID: -5 | y"); ok {
		t.Error("negative IDs are not valid snowflakes")
	}
}
