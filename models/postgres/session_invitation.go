package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Invitation statuses, shared by session and group invitations. Once a row
// leaves 'pending' it never transitions again.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationCancelled = "cancelled"
)

/*
 * 'SessionInvitation' is a pending ask to join a gaming session. The target
 * is either a single user or a whole group, never both.
 */
type SessionInvitation struct {
	ID              uint       `gorm:"primaryKey"`
	SessionID       string     `gorm:"size:50;not null;index:idx_session_invitations_session"`
	InviterUsername string     `gorm:"size:50;not null"`
	InvitedUsername *string    `gorm:"size:50;index:idx_session_invitations_invited"`
	InvitedGroupID  *uint      `gorm:"index:idx_session_invitations_group"`
	Status          string     `gorm:"size:20;not null;default:'pending'"`
	Message         string     `gorm:"size:255"`
	RespondedAt     *time.Time
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	GamingSession  GamingSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	InviterProfile GameProfile   `gorm:"foreignKey:InviterUsername;constraint:OnDelete:CASCADE"`
}

// BeforeSave enforces the user-or-group exclusivity of the target.
func (i *SessionInvitation) BeforeSave(tx *gorm.DB) error {
	if (i.InvitedUsername == nil) == (i.InvitedGroupID == nil) {
		return errors.New("invitation must target exactly one user or one group")
	}
	return nil
}

// IsPending reports whether the invitation still awaits an answer.
func (i *SessionInvitation) IsPending() bool {
	return i.Status == InvitationPending
}
