package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Connection statuses.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionDeclined = "declined"
	ConnectionBlocked  = "blocked"
)

/*
 * 'Connection' is an undirected friendship edge between two users. The pair
 * is stored sorted (UsernameA < UsernameB) under a composite primary key, so
 * a concurrent duplicate insert fails on the constraint instead of creating a
 * second row. Requester preserves who initiated the edge.
 */
type Connection struct {
	UsernameA  string     `gorm:"primaryKey;size:50;not null;index:idx_connections_b"`
	UsernameB  string     `gorm:"primaryKey;size:50;not null"`
	Requester  string     `gorm:"size:50;not null"`
	Status     string     `gorm:"size:20;not null;default:'pending'"`
	Message    string     `gorm:"size:255"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	ProfileA GameProfile `gorm:"foreignKey:UsernameA;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ProfileB GameProfile `gorm:"foreignKey:UsernameB;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeSave keeps the unordered pair canonical and rejects self-connections.
func (c *Connection) BeforeSave(tx *gorm.DB) error {
	if c.UsernameA == c.UsernameB {
		return errors.New("cannot create a connection with yourself")
	}
	if c.UsernameA > c.UsernameB {
		c.UsernameA, c.UsernameB = c.UsernameB, c.UsernameA
	}
	return nil
}

// Other returns the member of the pair that is not username.
func (c *Connection) Other(username string) string {
	if c.UsernameA == username {
		return c.UsernameB
	}
	return c.UsernameA
}

// Recipient returns the user that did not initiate the connection.
func (c *Connection) Recipient() string {
	return c.Other(c.Requester)
}

// IsPending reports whether the connection still awaits an answer.
func (c *Connection) IsPending() bool {
	return c.Status == ConnectionPending
}
