// Package chatsession holds the display rules for chat sessions: how titles
// and list previews are derived from message text.
package chatsession

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultTitle   = "New chat"
	TitleMaxRunes  = 40
	PreviewMaxRune = 80
	ellipsis       = "…"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// collapse trims s and folds every whitespace run into a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DeriveTitle turns the first user message into a session title.
func DeriveTitle(text string) string {
	t := collapse(text)
	if t == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(t) <= TitleMaxRunes {
		return t
	}
	return string([]rune(t)[:TitleMaxRunes]) + ellipsis
}

// Preview is the first 80 characters of the latest message.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewMaxRune {
		return text
	}
	return string(r[:PreviewMaxRune])
}

// NextUpdatedAt keeps updatedAt monotonically non-decreasing even if the
// clock steps backwards.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

// ShouldRetitle reports whether appending a message with role should replace
// the session title: only the first user message of a session titles it.
func ShouldRetitle(currentTitle, role string, priorUserMessages int64) bool {
	return role == RoleUser && priorUserMessages == 0 && currentTitle == DefaultTitle
}
