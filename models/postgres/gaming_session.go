package postgres

import (
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// Session lifecycle statuses. Transitions are explicit host actions, the
// clock never moves a session on its own.
const (
	SessionScheduled = "scheduled"
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Session privacy modes.
const (
	PrivacyPublic      = "public"
	PrivacyFriendsOnly = "friends_only"
	PrivacyInviteOnly  = "invite_only"
)

// ValidPrivacy reports whether p is one of the privacy modes.
func ValidPrivacy(p string) bool {
	switch p {
	case PrivacyPublic, PrivacyFriendsOnly, PrivacyInviteOnly:
		return true
	}
	return false
}

/*
 * 'GamingSession' is a scheduled or ad hoc multiplayer event. The host is
 * always conceptually a participant even though it is stored as a reference
 * here rather than as a SessionParticipant row.
 */
type GamingSession struct {
	ID              string    `gorm:"primaryKey;size:50;not null"`
	HostUsername    string    `gorm:"size:50;not null;index:idx_gaming_sessions_host"`
	Title           string    `gorm:"size:100;not null"`
	GameName        string    `gorm:"size:255;not null"`
	Platform        string    `gorm:"size:20"` // optional
	ScheduledAt     time.Time `gorm:"not null"`
	MaxParticipants int       `gorm:"not null;default:4"`
	Status          string    `gorm:"size:20;not null;default:'scheduled';index:idx_gaming_sessions_status"`
	Privacy         string    `gorm:"size:20;not null;default:'public'"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Host         GameProfile          `gorm:"foreignKey:HostUsername"`
	Participants []*SessionParticipant `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Invitations  []*SessionInvitation  `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Messages     []*SessionMessage     `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// IsOpenForJoins reports whether the session can still take joins at all.
// Capacity is a separate check, this only covers time and lifecycle.
func (s *GamingSession) IsOpenForJoins(now time.Time) bool {
	if s.Status == SessionCancelled {
		return false
	}
	return !s.ScheduledAt.Before(now)
}

// Random session id generation, same alphabet the invite links use
const sessionIDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateSessionID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = sessionIDCharset[rand.Intn(len(sessionIDCharset))]
	}
	return string(b)
}

// BeforeCreate assigns a short unique id so sessions are easy to share by
// hand. Collisions are retried; the id space is small but so is the table.
func (s *GamingSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID != "" {
		return nil
	}
	for {
		newID := generateSessionID(6)
		var existing GamingSession
		if err := tx.Where("id = ?", newID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				s.ID = newID
				return nil
			}
			return err
		}
		// Taken, roll again
	}
}
