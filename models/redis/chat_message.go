package redis

import "time"

// ChatMessage is the cached form of a session chat entry, kept in a capped
// Redis list so the polling endpoint does not hit Postgres on every tick.
type ChatMessage struct {
	ID        uint      `json:"id"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
