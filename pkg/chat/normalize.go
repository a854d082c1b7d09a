// Package chat decides what to do with an inbound message: it normalizes
// the text, applies the group-chat gating policy, and dispatches to exactly
// one capability handler.
package chat

import (
	"strings"
	"unicode"
)

// Normalize prepares raw message text for pattern matching: it drops
// zero-width and other format characters, trims surrounding whitespace, and
// strips a single leading "@name " mention prefix. Interior whitespace is
// kept as-is.
func Normalize(raw string) string {
	text := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, raw)

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "@") {
		if i := strings.IndexFunc(text, unicode.IsSpace); i > 0 {
			text = strings.TrimSpace(text[i:])
		} else {
			text = ""
		}
	}
	return text
}
