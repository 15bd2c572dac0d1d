package chat

import "time"

// Session describes one conversation lifetime (a browser connection or a CLI run).
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
