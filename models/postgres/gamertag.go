package postgres

import (
	"time"
)

/*
 * 'Gamertag' is a user's identity on one gaming platform. A user keeps at
 * most one gamertag per platform.
 */
type Gamertag struct {
	Username  string    `gorm:"primaryKey;size:50;not null"`
	Platform  string    `gorm:"primaryKey;size:20;not null"`
	Tag       string    `gorm:"size:100;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	GameProfile GameProfile `gorm:"foreignKey:Username;constraint:OnDelete:CASCADE"`
}
