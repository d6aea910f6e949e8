package coordination

import (
	models "Playnet/models/postgres"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createInvitation(t *testing.T, db *gorm.DB, sessionID, inviter, invited string) *models.SessionInvitation {
	inv := &models.SessionInvitation{
		SessionID:       sessionID,
		InviterUsername: inviter,
		InvitedUsername: &invited,
		Status:          models.InvitationPending,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func TestAcceptSessionInvitation(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	session := createSession(t, db, "aaaaaa", "host", func(s *models.GamingSession) {
		s.Privacy = models.PrivacyInviteOnly
	})
	inv := createInvitation(t, db, session.ID, "host", "invited")

	ok, reason, err := AcceptSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)
	assert.Equal(t, models.InvitationAccepted, inv.Status)
	assert.NotNil(t, inv.RespondedAt)

	// Membership side effect
	joined, err := IsActiveParticipant(db, session.ID, "invited")
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestAcceptTwiceDoesNotDuplicateParticipant(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	session := createSession(t, db, "aaaaaa", "host", nil)
	inv := createInvitation(t, db, session.ID, "host", "invited")

	ok, _, err := AcceptSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, reason, err := AcceptSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyAnswered, reason)

	var count int64
	require.NoError(t, db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND username = ?", session.ID, "invited").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeclineHasNoSideEffect(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	session := createSession(t, db, "aaaaaa", "host", nil)
	inv := createInvitation(t, db, session.ID, "host", "invited")

	ok, _, err := DeclineSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.InvitationDeclined, inv.Status)

	joined, err := IsActiveParticipant(db, session.ID, "invited")
	require.NoError(t, err)
	assert.False(t, joined)

	// Declined is final
	ok, reason, err := AcceptSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyAnswered, reason)
}

func TestOnlyTargetMayRespond(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	createProfile(t, db, "impostor")
	session := createSession(t, db, "aaaaaa", "host", nil)
	inv := createInvitation(t, db, session.ID, "host", "invited")

	ok, reason, err := AcceptSessionInvitation(db, inv, "impostor", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonNotYourInvite, reason)
	assert.Equal(t, models.InvitationPending, inv.Status)
}

func TestCancelSessionInvitation(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "host")
	createProfile(t, db, "invited")
	session := createSession(t, db, "aaaaaa", "host", nil)
	inv := createInvitation(t, db, session.ID, "host", "invited")

	ok, reason, err := CancelSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonNotYourAsk, reason)

	ok, _, err = CancelSessionInvitation(db, inv, "host", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.InvitationCancelled, inv.Status)

	// Cancelled is final for the invitee too
	ok, reason, err = AcceptSessionInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyAnswered, reason)
}

func TestGroupInvitationAcceptAddsMember(t *testing.T) {
	db := setupDB(t)
	createProfile(t, db, "owner")
	createProfile(t, db, "invited")
	group := models.Group{Name: "Raiders", OwnerUsername: "owner"}
	require.NoError(t, db.Create(&group).Error)

	inv := &models.GroupInvitation{
		GroupID:         group.ID,
		InviterUsername: "owner",
		InvitedUsername: "invited",
		Status:          models.InvitationPending,
	}
	require.NoError(t, db.Create(inv).Error)

	ok, _, err := AcceptGroupInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	var member models.GroupMember
	require.NoError(t, db.Where("group_id = ? AND username = ?", group.ID, "invited").First(&member).Error)

	// A second accept fails and leaves the single membership row alone
	ok, reason, err := AcceptGroupInvitation(db, inv, "invited", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyAnswered, reason)
}
