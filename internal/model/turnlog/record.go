package turnlog

import "time"

// Metadata carries per-turn measurements. TokensUsed is nil when the upstream
// did not report a count.
type Metadata struct {
	ProcessingTimeMs int64  `json:"processingTime"`
	TokensUsed       *int   `json:"tokensUsed,omitempty"`
	Model            string `json:"model,omitempty"`
}

// Tokens returns the token count or 0 when absent.
func (m *Metadata) Tokens() int {
	if m == nil || m.TokensUsed == nil {
		return 0
	}
	return *m.TokensUsed
}

// Record is one completed turn as persisted by the logbook.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserInput  string    `json:"userInput"`
	AIResponse string    `json:"aiResponse"`
	SessionID  string    `json:"sessionId"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Stats summarises the stored records.
type Stats struct {
	TotalConversations int        `json:"totalConversations"`
	SessionsCount      int        `json:"sessionsCount"`
	AvgResponseLength  int        `json:"avgResponseLength"`
	TotalTokens        int        `json:"totalTokens"`
	FirstLog           *time.Time `json:"firstLog,omitempty"`
	LastLog            *time.Time `json:"lastLog,omitempty"`
}
