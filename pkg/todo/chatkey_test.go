package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatKeyOf(t *testing.T) {
	tests := []struct {
		name     string
		source   Source
		expected string
	}{
		{
			name:     "group wins over room and user",
			source:   Source{GroupID: "g1", RoomID: "r1", UserID: "u1"},
			expected: "group:g1",
		},
		{
			name:     "room wins over user",
			source:   Source{RoomID: "r1", UserID: "u1"},
			expected: "room:r1",
		},
		{
			name:     "user only",
			source:   Source{UserID: "u1"},
			expected: "user:u1",
		},
		{
			name:     "empty source",
			source:   Source{},
			expected: "unknown",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ChatKeyOf(tc.source))
		})
	}
}

func TestChatKeyOfDistinctSources(t *testing.T) {
	sources := []Source{
		{GroupID: "a"},
		{GroupID: "b"},
		{RoomID: "a"},
		{RoomID: "b"},
		{UserID: "a"},
		{UserID: "b"},
	}
	seen := map[string]Source{}
	for _, s := range sources {
		key := ChatKeyOf(s)
		prev, dup := seen[key]
		assert.False(t, dup, "sources %+v and %+v collided on key %s", prev, s, key)
		seen[key] = s
	}
}

func TestParseChatKey(t *testing.T) {
	for _, s := range []Source{{GroupID: "g"}, {RoomID: "r"}, {UserID: "u"}} {
		parsed, err := ParseChatKey(ChatKeyOf(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, bad := range []string{"", "unknown", "group:", "bot:x", "user"} {
		_, err := ParseChatKey(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
