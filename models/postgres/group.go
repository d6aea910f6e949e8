package postgres

import (
	"time"
)

/*
 * 'Group' is a named circle of players. Groups can be invited to gaming
 * sessions as a whole, see SessionInvitation.
 */
type Group struct {
	ID            uint      `gorm:"primaryKey"`
	Name          string    `gorm:"size:100;not null"`
	Description   string    `gorm:"size:500"`
	OwnerUsername string    `gorm:"size:50;not null;index:idx_groups_owner"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Owner   GameProfile    `gorm:"foreignKey:OwnerUsername"`
	Members []*GroupMember `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// 'GroupMember' is a user's membership in a group.
type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey"`
	Username string    `gorm:"primaryKey;size:50;not null;index"`
	JoinedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Group       Group       `gorm:"foreignKey:GroupID"`
	GameProfile GameProfile `gorm:"foreignKey:Username"`
}

/*
 * 'GroupInvitation' asks a user into a group. Same monotonic status rules as
 * SessionInvitation, including the inviter-side cancel.
 */
type GroupInvitation struct {
	ID              uint       `gorm:"primaryKey"`
	GroupID         uint       `gorm:"not null;index:idx_group_invitations_group"`
	InviterUsername string     `gorm:"size:50;not null"`
	InvitedUsername string     `gorm:"size:50;not null;index:idx_group_invitations_invited"`
	Status          string     `gorm:"size:20;not null;default:'pending'"`
	Message         string     `gorm:"size:255"`
	RespondedAt     *time.Time
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Group          Group       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	InviterProfile GameProfile `gorm:"foreignKey:InviterUsername;constraint:OnDelete:CASCADE"`
	InvitedProfile GameProfile `gorm:"foreignKey:InvitedUsername;constraint:OnDelete:CASCADE"`
}

// IsPending reports whether the invitation still awaits an answer.
func (i *GroupInvitation) IsPending() bool {
	return i.Status == InvitationPending
}
