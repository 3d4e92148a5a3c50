package entity

import "time"

// Role enumerates the message roles used on the wire and in the transcript.
// System content is never persisted; it exists only inside assembled prompts.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single persisted transcript entry.
type Turn struct {
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	Timestamp        time.Time `json:"timestamp"`
	GeneratedSummary bool      `json:"generated_summary,omitempty"`
}

// Conversation groups a transcript with its ownership and timing metadata.
type Conversation struct {
	ConversationID string     `json:"conversation_id"`
	ParticipantID  string     `json:"participant_id"`
	Turns          []Turn     `json:"turns"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// UserTurnCount returns the number of user-role turns in the transcript.
func UserTurnCount(turns []Turn) int {
	n := 0
	for _, t := range turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// StripSystemTurns drops any system-role entries. Stored transcripts must
// never contain them, but old rows written by earlier builds might.
func StripSystemTurns(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == RoleSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}
