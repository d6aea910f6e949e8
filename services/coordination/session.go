package coordination

import (
	models "Playnet/models/postgres"
	"time"

	"gorm.io/gorm"
)

/**
 * Session coordination: join eligibility, participant membership and the
 * session lifecycle. Every function runs on the *gorm.DB it is handed, so
 * handlers can pass a transaction for compound flows. Business rejections
 * come back as (false, reason) with a short user-facing reason, never as an
 * error; err is reserved for storage failures.
 */

// Denial reasons shown to users verbatim.
const (
	ReasonAlreadyJoined   = "You are already in this session."
	ReasonSessionFull     = "This session is full."
	ReasonSessionClosed   = "This session is no longer open to joins."
	ReasonInviteRequired  = "You need an invitation to join this session."
	ReasonCannotJoin      = "You cannot join this session."
	ReasonNotParticipant  = "You are not in this session."
	ReasonHostCannotLeave = "The host cannot leave their own session. Cancel it instead."
	ReasonHostOnly        = "Only the host can do that."
	ReasonNotScheduled    = "Only a scheduled session can do that."
	ReasonNotActive       = "Only an active session can be completed."
	ReasonTargetNotFound  = "That user is not in this session."
	ReasonCannotKickHost  = "The host cannot be kicked."
)

// JoinedCount returns how many participants currently hold a joined row.
// The host is not counted, it is an owner reference rather than a row.
func JoinedCount(db *gorm.DB, sessionID string) (int64, error) {
	var count int64
	err := db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND status = ?", sessionID, models.ParticipantJoined).
		Count(&count).Error
	return count, err
}

// IsFull reports whether the session reached its participant cap.
func IsFull(db *gorm.DB, session *models.GamingSession) (bool, error) {
	count, err := JoinedCount(db, session.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(session.MaxParticipants), nil
}

// IsActiveParticipant reports whether username holds a joined row.
func IsActiveParticipant(db *gorm.DB, sessionID string, username string) (bool, error) {
	var count int64
	err := db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND username = ? AND status = ?",
			sessionID, username, models.ParticipantJoined).
		Count(&count).Error
	return count > 0, err
}

// hasAcceptedInvitation checks for an accepted invitation addressed to the
// user directly or to any group the user belongs to.
func hasAcceptedInvitation(db *gorm.DB, sessionID string, username string) (bool, error) {
	var count int64
	err := db.Model(&models.SessionInvitation{}).
		Where("session_id = ? AND status = ? AND (invited_username = ? OR invited_group_id IN (?))",
			sessionID, models.InvitationAccepted, username,
			db.Model(&models.GroupMember{}).Select("group_id").Where("username = ?", username)).
		Count(&count).Error
	return count > 0, err
}

// CanUserJoin evaluates join eligibility. Checks run in a fixed precedence
// order and the first match wins; note the host only gets its bypass after
// the capacity and lifecycle checks.
func CanUserJoin(db *gorm.DB, session *models.GamingSession, username string, now time.Time) (bool, string, error) {
	joined, err := IsActiveParticipant(db, session.ID, username)
	if err != nil {
		return false, "", err
	}
	if joined {
		return false, ReasonAlreadyJoined, nil
	}

	full, err := IsFull(db, session)
	if err != nil {
		return false, "", err
	}
	if full {
		return false, ReasonSessionFull, nil
	}

	if !session.IsOpenForJoins(now) {
		return false, ReasonSessionClosed, nil
	}

	if username == session.HostUsername {
		return true, "", nil
	}

	switch session.Privacy {
	case models.PrivacyPublic:
		return true, "", nil
	case models.PrivacyFriendsOnly:
		// TODO: verify an accepted Connection between host and joiner once
		// the friends graph exposes a lookup here; joins are open meanwhile.
		return true, "", nil
	case models.PrivacyInviteOnly:
		invited, err := hasAcceptedInvitation(db, session.ID, username)
		if err != nil {
			return false, "", err
		}
		if invited {
			return true, "", nil
		}
		return false, ReasonInviteRequired, nil
	}

	return false, ReasonCannotJoin, nil
}

// AddParticipant inserts a fresh joined row. Re-joins after a leave insert a
// new row rather than reviving the old one.
func AddParticipant(db *gorm.DB, sessionID string, username string) (*models.SessionParticipant, error) {
	participant := models.SessionParticipant{
		SessionID: sessionID,
		Username:  username,
		Status:    models.ParticipantJoined,
		JoinedAt:  time.Now(),
	}
	if err := db.Create(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// JoinSession runs the eligibility check and membership insert together.
func JoinSession(db *gorm.DB, session *models.GamingSession, username string, now time.Time) (bool, string, error) {
	ok, reason, err := CanUserJoin(db, session, username, now)
	if err != nil || !ok {
		return ok, reason, err
	}
	if _, err := AddParticipant(db, session.ID, username); err != nil {
		return false, "", err
	}
	return true, "", nil
}

// LeaveSession marks the user's joined row as left. The host never leaves,
// it cancels the whole session instead.
func LeaveSession(db *gorm.DB, session *models.GamingSession, username string, now time.Time) (bool, string, error) {
	if username == session.HostUsername {
		return false, ReasonHostCannotLeave, nil
	}

	var participant models.SessionParticipant
	result := db.Where("session_id = ? AND username = ? AND status = ?",
		session.ID, username, models.ParticipantJoined).First(&participant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return false, ReasonNotParticipant, nil
		}
		return false, "", result.Error
	}

	participant.Status = models.ParticipantLeft
	participant.LeftAt = &now
	if err := db.Save(&participant).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// KickParticipant removes target from the session on behalf of the host.
func KickParticipant(db *gorm.DB, session *models.GamingSession, actor, target string, now time.Time) (bool, string, error) {
	if actor != session.HostUsername {
		return false, ReasonHostOnly, nil
	}
	if target == session.HostUsername {
		return false, ReasonCannotKickHost, nil
	}

	var participant models.SessionParticipant
	result := db.Where("session_id = ? AND username = ? AND status = ?",
		session.ID, target, models.ParticipantJoined).First(&participant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return false, ReasonTargetNotFound, nil
		}
		return false, "", result.Error
	}

	participant.Status = models.ParticipantKicked
	participant.LeftAt = &now
	if err := db.Save(&participant).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// StartSession moves scheduled -> active. No clock does this, only the host.
func StartSession(db *gorm.DB, session *models.GamingSession, actor string) (bool, string, error) {
	if actor != session.HostUsername {
		return false, ReasonHostOnly, nil
	}
	if session.Status != models.SessionScheduled {
		return false, ReasonNotScheduled, nil
	}
	session.Status = models.SessionActive
	if err := db.Save(session).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// CompleteSession moves active -> completed.
func CompleteSession(db *gorm.DB, session *models.GamingSession, actor string) (bool, string, error) {
	if actor != session.HostUsername {
		return false, ReasonHostOnly, nil
	}
	if session.Status != models.SessionActive {
		return false, ReasonNotActive, nil
	}
	session.Status = models.SessionCompleted
	if err := db.Save(session).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// CancelSession soft-cancels a scheduled session. Cancelled sessions are
// never hard-deleted.
func CancelSession(db *gorm.DB, session *models.GamingSession, actor string) (bool, string, error) {
	if actor != session.HostUsername {
		return false, ReasonHostOnly, nil
	}
	if session.Status != models.SessionScheduled {
		return false, ReasonNotScheduled, nil
	}
	session.Status = models.SessionCancelled
	if err := db.Save(session).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}
