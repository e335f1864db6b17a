package conversation

import (
	"time"
	"unicode/utf8"

	"github.com/smartsupport/backend/internal/domain"
)

// MessageStats summarizes a single conversation.
type MessageStats struct {
	Total             int `json:"total"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	AverageLength     int `json:"average_length"`
}

// ComputeMessageStats counts messages per role and the integer average
// content length in runes. An empty history yields all zeros.
func ComputeMessageStats(messages []domain.Message) MessageStats {
	var stats MessageStats
	if len(messages) == 0 {
		return stats
	}

	totalLength := 0
	for _, m := range messages {
		stats.Total++
		totalLength += utf8.RuneCountInString(m.Content)
		switch m.Role {
		case domain.RoleUser:
			stats.UserMessages++
		case domain.RoleAssistant:
			stats.AssistantMessages++
		}
	}
	stats.AverageLength = totalLength / stats.Total
	return stats
}

// AverageResponseTime computes the mean assistant latency in minutes
// over adjacent user→assistant pairs. Pairs with an unparseable
// timestamp are skipped; zero valid pairs yields 0.0.
func AverageResponseTime(entries []Entry) float64 {
	if len(entries) < 2 {
		return 0.0
	}

	var total float64
	var count int
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Role != string(domain.RoleUser) || entries[i].Role != string(domain.RoleAssistant) {
			continue
		}
		t1, err := time.Parse(time.RFC3339, entries[i-1].Timestamp)
		if err != nil {
			continue
		}
		t2, err := time.Parse(time.RFC3339, entries[i].Timestamp)
		if err != nil {
			continue
		}
		total += t2.Sub(t1).Minutes()
		count++
	}

	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}

// CountByCategory builds a frequency table of classification categories,
// keyed by the values actually stored.
func CountByCategory(records []domain.ClassificationRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}

// CountByUrgency builds a frequency table of classification urgencies.
func CountByUrgency(records []domain.ClassificationRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Urgency]++
	}
	return counts
}
