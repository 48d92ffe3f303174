// Package markup decorates reply text for the chat transport.
package markup

import (
	"strings"

	"github.com/dukerupert/chorebot/internal/model"
)

// Bold wraps s in the chat's bold markers.
func Bold(s string) string {
	return "*" + s + "*"
}

// Mention renders a mention of u.
func Mention(u model.User) string {
	return "@" + u.Name
}

// Bullets renders one "- item" line per entry.
func Bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
