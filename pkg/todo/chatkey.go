package todo

import (
	"fmt"
	"strings"
)

// Source identifies the conversation an event came from. At most one of the
// fields is meaningful; precedence is group > room > user.
type Source struct {
	GroupID string
	RoomID  string
	UserID  string
}

// ChatKeyOf derives the canonical conversation key used to partition todo
// items. Distinct sources always map to distinct keys.
func ChatKeyOf(source Source) string {
	switch {
	case source.GroupID != "":
		return "group:" + source.GroupID
	case source.RoomID != "":
		return "room:" + source.RoomID
	case source.UserID != "":
		return "user:" + source.UserID
	default:
		return "unknown"
	}
}

// ParseChatKey converts a "type:id" string back into a Source. It is the
// inverse of ChatKeyOf for the three known source types.
func ParseChatKey(key string) (Source, error) {
	typ, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return Source{}, fmt.Errorf("malformed chat key %q", key)
	}
	switch typ {
	case "group":
		return Source{GroupID: id}, nil
	case "room":
		return Source{RoomID: id}, nil
	case "user":
		return Source{UserID: id}, nil
	default:
		return Source{}, fmt.Errorf("unknown chat key type %q", typ)
	}
}
