package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'GameProfile' defines the public side of a user. It is referenced in User,
 * Gamertag, GameRecord, Connection, Group, GamingSession, SessionParticipant,
 * SessionInvitation and SessionMessage.
 */
type GameProfile struct {
	Username  string         `gorm:"primaryKey;size:50;not null"`
	Bio       string         `gorm:"size:500"`
	UserStats datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	UserIcon  int            `gorm:"default:0"`

	// NOTE: no back-reference to User, it creates a circular dependency
	Gamertags          []Gamertag          `gorm:"foreignKey:Username"`
	GameRecords        []GameRecord        `gorm:"foreignKey:OwnerUsername"`
	HostedSessions     []GamingSession     `gorm:"foreignKey:HostUsername"`
	Participations     []SessionParticipant `gorm:"foreignKey:Username"`
	SessionInvitations []SessionInvitation `gorm:"foreignKey:InvitedUsername"`
	GroupMemberships   []GroupMember       `gorm:"foreignKey:Username"`
}
