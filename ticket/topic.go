package ticket

import (
	"fmt"
	"strconv"
	"strings"
)

// The channel topic doubles as the ticket's creation record. The format is a
// fixed single line, split on "|" with literal labels:
//
//	Ticket of <display name> | User ID: <id> | Created at: <timestamp>
//
// This exact shape is what the platform displays in the channel header, so it
// is kept byte-compatible with the previous bot generation.
const (
	labelOwner   = "User ID:"
	labelCreated = "Created at:"
)

func EncodeTopic(displayName, userID, createdAt string) string {
	return fmt.Sprintf("Ticket of %s | %s %s | %s %s", displayName, labelOwner, userID, labelCreated, createdAt)
}

// OwnerID recovers the ticket owner's user ID from a channel topic. The
// second return is false when the topic is not a ticket creation record.
func OwnerID(topic string) (int64, bool) {
	v, ok := topicField(topic, labelOwner)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// CreatedAt recovers the formatted creation timestamp. The timestamp is
// opaque display text, returned as written.
func CreatedAt(topic string) (string, bool) {
	return topicField(topic, labelCreated)
}

func topicField(topic, label string) (string, bool) {
	for _, part := range strings.Split(topic, "|") {
		if idx := strings.Index(part, label); idx >= 0 {
			return strings.TrimSpace(part[idx+len(label):]), true
		}
	}
	return "", false
}
