package postgres

import (
	"time"
)

// Message types inside a session chat.
const (
	MessageText         = "text"
	MessageSystem       = "system"
	MessageAnnouncement = "announcement"
)

// ValidMessageType reports whether t is one of the chat message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageText, MessageSystem, MessageAnnouncement:
		return true
	}
	return false
}

/*
 * 'SessionMessage' is one entry of a session's append-only chat. Edits
 * replace the body destructively and only set EditedAt; deletion is hard.
 */
type SessionMessage struct {
	ID             uint       `gorm:"primaryKey"`
	SessionID      string     `gorm:"size:50;not null;index:idx_session_messages_session"`
	SenderUsername string     `gorm:"size:50;not null"`
	Body           string     `gorm:"size:2000;not null"`
	Type           string     `gorm:"size:20;not null;default:'text'"`
	EditedAt       *time.Time
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_session_messages_created"`

	GamingSession GamingSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	SenderProfile GameProfile   `gorm:"foreignKey:SenderUsername"`
}
