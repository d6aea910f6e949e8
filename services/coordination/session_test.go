package coordination

import (
	models "Playnet/models/postgres"
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
		&models.GameProfile{},
		&models.User{},
		&models.Gamertag{},
		&models.GameRecord{},
		&models.Connection{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvitation{},
		&models.GamingSession{},
		&models.SessionParticipant{},
		&models.SessionInvitation{},
		&models.SessionMessage{},
	))
	return db
}

func createProfile(t *testing.T, db *gorm.DB, username string) {
	require.NoError(t, db.Create(&models.GameProfile{Username: username}).Error)
}

func createSession(t *testing.T, db *gorm.DB, id, host string, mutate func(*models.GamingSession)) *models.GamingSession {
	session := &models.GamingSession{
		ID:              id,
		HostUsername:    host,
		Title:           "Raid night",
		GameName:        "Destiny 2",
		ScheduledAt:     time.Now().Add(2 * time.Hour),
		MaxParticipants: 4,
		Status:          models.SessionScheduled,
		Privacy:         models.PrivacyPublic,
	}
	if mutate != nil {
		mutate(session)
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func TestJoinPublicSession(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, reason, err := JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)

	count, err := JoinedCount(db, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestJoinTwiceIsRejected(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, _, err := JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, reason, err := JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyJoined, reason)
}

func TestFullSessionRejectsJoins(t *testing.T) {
	db := setupDB(t)
	for _, name := range []string{"host", "one", "two", "three"} {
		createProfile(t, db, name)
	}
	session := createSession(t, db, "aaaaaa", "host", func(s *models.GamingSession) {
		s.MaxParticipants = 2
	})

	for _, name := range []string{"one", "two"} {
		ok, _, err := JoinSession(db, session, name, time.Now())
		require.NoError(t, err)
		require.True(t, ok)
	}

	full, err := IsFull(db, session)
	require.NoError(t, err)
	assert.True(t, full)

	ok, reason, err := CanUserJoin(db, session, "three", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonSessionFull, reason)

	// The host gets no capacity bypass either
	ok, reason, err = CanUserJoin(db, session, "host", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonSessionFull, reason)
}

func TestPastAndCancelledSessionsRejectJoins(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")

	past := createSession(t, db, "past01", "host", func(s *models.GamingSession) {
		s.ScheduledAt = time.Now().Add(-time.Hour)
	})
	ok, reason, err := CanUserJoin(db, past, "guest", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonSessionClosed, reason)

	cancelled := createSession(t, db, "cancl1", "host", func(s *models.GamingSession) {
		s.Status = models.SessionCancelled
	})
	ok, reason, err = CanUserJoin(db, cancelled, "guest", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonSessionClosed, reason)
}

func TestInviteOnlySession(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	createProfile(t, db, "stranger")
	session := createSession(t, db, "aaaaaa", "host", func(s *models.GamingSession) {
		s.Privacy = models.PrivacyInviteOnly
	})

	invited := "invited"
	inv := models.SessionInvitation{
		SessionID:       session.ID,
		InviterUsername: "host",
		InvitedUsername: &invited,
		Status:          models.InvitationPending,
	}
	require.NoError(t, db.Create(&inv).Error)

	// Pending invitation does not open the door
	ok, reason, err := CanUserJoin(db, session, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonInviteRequired, reason)

	inv.Status = models.InvitationAccepted
	require.NoError(t, db.Save(&inv).Error)

	ok, _, err = CanUserJoin(db, session, "invited", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, reason, err = CanUserJoin(db, session, "stranger", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonInviteRequired, reason)

	// The host never needs an invitation
	ok, _, err = CanUserJoin(db, session, "host", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInviteOnlySessionViaGroup(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "member")
	session := createSession(t, db, "aaaaaa", "host", func(s *models.GamingSession) {
		s.Privacy = models.PrivacyInviteOnly
	})

	group := models.Group{Name: "The Squad", OwnerUsername: "host"}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, Username: "member"}).Error)

	inv := models.SessionInvitation{
		SessionID:       session.ID,
		InviterUsername: "host",
		InvitedGroupID:  &group.ID,
		Status:          models.InvitationAccepted,
	}
	require.NoError(t, db.Create(&inv).Error)

	ok, _, err := CanUserJoin(db, session, "member", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeaveAndRejoinInsertsNewRow(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, _, err := JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = LeaveSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	var rows []models.SessionParticipant
	require.NoError(t, db.Where("session_id = ? AND username = ?", session.ID, "guest").Find(&rows).Error)
	assert.Len(t, rows, 2)

	var left int
	for _, row := range rows {
		if row.Status == models.ParticipantLeft {
			left++
			assert.NotNil(t, row.LeftAt)
		}
	}
	assert.Equal(t, 1, left)
}

func TestHostCannotLeaveButCanCancel(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, reason, err := LeaveSession(db, session, "host", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonHostCannotLeave, reason)

	ok, _, err = CancelSession(db, session, "host")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.SessionCancelled, session.Status)

	var stored models.GamingSession
	require.NoError(t, db.Where("id = ?", session.ID).First(&stored).Error)
	assert.Equal(t, models.SessionCancelled, stored.Status)
}

func TestOnlyHostControlsLifecycle(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, reason, err := StartSession(db, session, "guest")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonHostOnly, reason)

	ok, _, err = StartSession(db, session, "host")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionActive, session.Status)

	// Active sessions cannot be cancelled, only completed
	ok, reason, err = CancelSession(db, session, "host")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonNotScheduled, reason)

	ok, _, err = CompleteSession(db, session, "host")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, session.Status)
}

func TestKickParticipant(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "guest")
	createProfile(t, db, "other")
	session := createSession(t, db, "aaaaaa", "host", nil)

	ok, _, err := JoinSession(db, session, "guest", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, reason, err := KickParticipant(db, session, "other", "guest", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonHostOnly, reason)

	ok, reason, err = KickParticipant(db, session, "host", "host", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonCannotKickHost, reason)

	ok, _, err = KickParticipant(db, session, "host", "guest", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	joined, err := IsActiveParticipant(db, session.ID, "guest")
	require.NoError(t, err)
	assert.False(t, joined)
}
