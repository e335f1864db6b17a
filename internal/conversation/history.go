// Package conversation contains pure helpers shared by the session
// manager, the completion gateway client and the dashboard: history
// rendering, title derivation and aggregate statistics.
package conversation

import (
	"strings"
	"time"

	"github.com/smartsupport/backend/internal/domain"
)

const (
	maxTitleWords = 8
	maxTitleLen   = 50
)

// Entry is one history item in the shape the completion gateway
// consumes. Timestamp is RFC 3339.
type Entry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// HistoryFromMessages converts stored messages into gateway history
// entries, preserving chronological order.
func HistoryFromMessages(messages []domain.Message) []Entry {
	entries := make([]Entry, len(messages))
	for i, m := range messages {
		entries[i] = Entry{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		}
	}
	return entries
}

// RenderTranscript renders history entries as "<role>: <content>" lines.
func RenderTranscript(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Role + ": " + e.Content
	}
	return strings.Join(lines, "\n")
}

// GenerateTitle derives a session title from its first user message:
// the first 8 words, capped at 50 characters with an ellipsis marker.
// An empty message yields the default title.
func GenerateTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) == 0 {
		return domain.DefaultSessionTitle
	}
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	return title
}
