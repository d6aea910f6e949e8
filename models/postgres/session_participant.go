package postgres

import (
	"time"
)

// Participant statuses. Re-joining after a leave inserts a new row, it does
// not resurrect the old one.
const (
	ParticipantJoined = "joined"
	ParticipantLeft   = "left"
	ParticipantKicked = "kicked"
)

/*
 * 'SessionParticipant' is the join record of a user in a gaming session.
 * At most one row per (session, user) may have status 'joined' at any time;
 * that invariant is enforced by the coordination service, not the schema.
 */
type SessionParticipant struct {
	ID        uint       `gorm:"primaryKey"`
	SessionID string     `gorm:"size:50;not null;index:idx_session_participants_session"`
	Username  string     `gorm:"size:50;not null;index:idx_session_participants_user"`
	Status    string     `gorm:"size:20;not null;default:'joined'"`
	JoinedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP"`
	LeftAt    *time.Time

	GamingSession GamingSession `gorm:"foreignKey:SessionID"`
	GameProfile   GameProfile   `gorm:"foreignKey:Username"`
}
