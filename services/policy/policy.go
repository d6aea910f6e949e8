package policy

import (
	models "Playnet/models/postgres"

	"gorm.io/gorm"
)

/**
 * Authorization checks for sessions and their chat. Handlers resolve the
 * acting user first (middleware) and then ask here whether the action is
 * allowed; a false answer maps to 403 with a short message.
 */

// CanViewSession reports whether username may see the session at all.
// Public and friends-only sessions are listed openly; invite-only sessions
// are visible to the host, participants and anyone holding an invitation.
func CanViewSession(db *gorm.DB, session *models.GamingSession, username string) (bool, error) {
	if session.Privacy != models.PrivacyInviteOnly {
		return true, nil
	}
	if username == session.HostUsername {
		return true, nil
	}

	var count int64
	err := db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND username = ?", session.ID, username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = db.Model(&models.SessionInvitation{}).
		Where("session_id = ? AND (invited_username = ? OR invited_group_id IN (?))",
			session.ID, username,
			db.Model(&models.GroupMember{}).Select("group_id").Where("username = ?", username)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanPostMessage reports whether username may write into the session chat.
// Host and currently joined participants only.
func CanPostMessage(db *gorm.DB, session *models.GamingSession, username string) (bool, error) {
	if username == session.HostUsername {
		return true, nil
	}
	var count int64
	err := db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND username = ? AND status = ?",
			session.ID, username, models.ParticipantJoined).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanPostAnnouncement restricts announcement-typed messages to the host.
func CanPostAnnouncement(session *models.GamingSession, username string) bool {
	return username == session.HostUsername
}

// CanEditMessage allows only the author to rewrite a message body.
func CanEditMessage(message *models.SessionMessage, username string) bool {
	return message.SenderUsername == username
}

// CanDeleteMessage allows the author or the session host to remove a
// message.
func CanDeleteMessage(session *models.GamingSession, message *models.SessionMessage, username string) bool {
	return message.SenderUsername == username || session.HostUsername == username
}
