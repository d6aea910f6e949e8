package postgres

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&GameProfile{},
		&User{},
		&Gamertag{},
		&GameRecord{},
		&Connection{},
		&Group{},
		&GroupMember{},
		&GroupInvitation{},
		&GamingSession{},
		&SessionParticipant{},
		&SessionInvitation{},
		&SessionMessage{},
	))
	return db
}

func createProfiles(t *testing.T, db *gorm.DB, usernames ...string) {
	for _, username := range usernames {
		require.NoError(t, db.Create(&GameProfile{Username: username}).Error)
	}
}

func TestConnectionPairIsStoredSorted(t *testing.T) {
	db := setupDB(t)
	createProfiles(t, db, "zoe", "adam")

	conn := Connection{
		UsernameA: "zoe",
		UsernameB: "adam",
		Requester: "zoe",
		Status:    ConnectionPending,
	}
	require.NoError(t, db.Create(&conn).Error)

	var stored Connection
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "adam", stored.UsernameA)
	assert.Equal(t, "zoe", stored.UsernameB)
	assert.Equal(t, "zoe", stored.Requester)
	assert.Equal(t, "adam", stored.Recipient())
	assert.Equal(t, "zoe", stored.Other("adam"))
}

func TestConnectionDuplicateInsertFails(t *testing.T) {
	db := setupDB(t)
	createProfiles(t, db, "zoe", "adam")

	first := Connection{UsernameA: "adam", UsernameB: "zoe", Requester: "adam"}
	require.NoError(t, db.Create(&first).Error)

	// Same pair from the other direction collides on the sorted key
	second := Connection{UsernameA: "zoe", UsernameB: "adam", Requester: "zoe"}
	assert.Error(t, db.Create(&second).Error)
}

func TestConnectionWithSelfIsRejected(t *testing.T) {
	db := setupDB(t)
	createProfiles(t, db, "zoe")

	conn := Connection{UsernameA: "zoe", UsernameB: "zoe", Requester: "zoe"}
	assert.Error(t, db.Create(&conn).Error)
}

func TestSessionInvitationTargetExclusivity(t *testing.T) {
	db := setupDB(t)
	createProfiles(t, db, "host", "guest")
	session := GamingSession{
		ID:           "abc123",
		HostUsername: "host",
		Title:        "Raid night",
		GameName:     "Destiny 2",
		ScheduledAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&session).Error)

	// Neither target set
	assert.Error(t, db.Create(&SessionInvitation{
		SessionID:       session.ID,
		InviterUsername: "host",
	}).Error)

	// Both targets set
	guest := "guest"
	groupID := uint(1)
	assert.Error(t, db.Create(&SessionInvitation{
		SessionID:       session.ID,
		InviterUsername: "host",
		InvitedUsername: &guest,
		InvitedGroupID:  &groupID,
	}).Error)

	// Exactly one target is fine
	assert.NoError(t, db.Create(&SessionInvitation{
		SessionID:       session.ID,
		InviterUsername: "host",
		InvitedUsername: &guest,
	}).Error)
}

func TestSessionIDIsGenerated(t *testing.T) {
	db := setupDB(t)
	createProfiles(t, db, "host")

	session := GamingSession{
		HostUsername: "host",
		Title:        "Raid night",
		GameName:     "Destiny 2",
		ScheduledAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&session).Error)
	assert.Len(t, session.ID, 6)

	// An explicit id is kept untouched
	fixed := GamingSession{
		ID:           "fixed1",
		HostUsername: "host",
		Title:        "Raid night",
		GameName:     "Destiny 2",
		ScheduledAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&fixed).Error)
	assert.Equal(t, "fixed1", fixed.ID)
}

func TestSessionOpenForJoins(t *testing.T) {
	now := time.Now()

	upcoming := GamingSession{Status: SessionScheduled, ScheduledAt: now.Add(time.Hour)}
	assert.True(t, upcoming.IsOpenForJoins(now))

	past := GamingSession{Status: SessionScheduled, ScheduledAt: now.Add(-time.Hour)}
	assert.False(t, past.IsOpenForJoins(now))

	cancelled := GamingSession{Status: SessionCancelled, ScheduledAt: now.Add(time.Hour)}
	assert.False(t, cancelled.IsOpenForJoins(now))
}

func TestGameRecordGenreRoundTrip(t *testing.T) {
	record := GameRecord{}
	record.SetGenres([]string{"Roguelike", "Action"})
	assert.Equal(t, []string{"Roguelike", "Action"}, record.GenreList())

	empty := GameRecord{}
	assert.Empty(t, empty.GenreList())
}
