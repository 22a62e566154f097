package conversation

import (
	"sort"
	"time"
)

// isoTimestamp matches JavaScript's Date.toISOString output so history
// items stay byte-compatible with what the agent hub already accepts.
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// HistoryItem is one prompt/answer pair of reconstructed conversation
// history. Derived, never persisted.
type HistoryItem struct {
	Prompt    string `json:"prompt"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

// BuildHistory reconstructs prompt/answer pairs from the flat message log,
// oldest first. Recomputed on every send; pure derivation.
//
// Pairing rules: messages are stably sorted by timestamp, then scanned
// tracking the most recent unmatched user message. A bot message answers
// the pending user message; a newer user message discards any previous
// unmatched one; a bot message with no pending user message is skipped;
// a trailing unmatched user message produces no item. Error placeholders
// are ordinary bot content and pair like any other bot message.
func BuildHistory(messages []Message) []HistoryItem {
	sorted := make([]Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var history []HistoryItem
	var pending *Message
	for i := range sorted {
		msg := &sorted[i]
		switch msg.Sender {
		case SenderUser:
			pending = msg
		case SenderBot:
			if pending == nil {
				continue
			}
			history = append(history, HistoryItem{
				Prompt:    pending.Content,
				Answer:    msg.Content,
				CreatedAt: pending.Timestamp.UTC().Format(isoTimestamp),
			})
			pending = nil
		}
	}
	return history
}

// ISOTimestamp formats t the way the agent API expects request timestamps.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoTimestamp)
}
