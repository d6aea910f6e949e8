package coordination

import (
	models "Playnet/models/postgres"
	"time"

	"gorm.io/gorm"
)

// Invitation denial reasons shown to users verbatim.
const (
	ReasonAlreadyAnswered = "This invitation has already been answered."
	ReasonNotYourInvite   = "This invitation is not addressed to you."
	ReasonNotYourAsk      = "Only the inviter can cancel an invitation."
)

// invitationTargets reports whether the invitation is addressed to actor,
// directly or through membership in the invited group.
func invitationTargets(db *gorm.DB, inv *models.SessionInvitation, actor string) (bool, error) {
	if inv.InvitedUsername != nil {
		return *inv.InvitedUsername == actor, nil
	}
	if inv.InvitedGroupID != nil {
		var count int64
		err := db.Model(&models.GroupMember{}).
			Where("group_id = ? AND username = ?", *inv.InvitedGroupID, actor).
			Count(&count).Error
		return count > 0, err
	}
	return false, nil
}

// AcceptSessionInvitation flips a pending invitation to accepted and inserts
// the membership row as a side effect. A second accept is a plain failure,
// it never duplicates the participant.
func AcceptSessionInvitation(db *gorm.DB, inv *models.SessionInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}

	targeted, err := invitationTargets(db, inv, actor)
	if err != nil {
		return false, "", err
	}
	if !targeted {
		return false, ReasonNotYourInvite, nil
	}

	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}

	// Membership side effect. The host already belongs, and an accept while
	// already joined must not insert a second joined row.
	var session models.GamingSession
	if err := db.Where("id = ?", inv.SessionID).First(&session).Error; err != nil {
		return false, "", err
	}
	if actor == session.HostUsername {
		return true, "", nil
	}
	joined, err := IsActiveParticipant(db, inv.SessionID, actor)
	if err != nil {
		return false, "", err
	}
	if !joined {
		if _, err := AddParticipant(db, inv.SessionID, actor); err != nil {
			return false, "", err
		}
	}
	return true, "", nil
}

// DeclineSessionInvitation flips a pending invitation to declined. No side
// effects.
func DeclineSessionInvitation(db *gorm.DB, inv *models.SessionInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}

	targeted, err := invitationTargets(db, inv, actor)
	if err != nil {
		return false, "", err
	}
	if !targeted {
		return false, ReasonNotYourInvite, nil
	}

	inv.Status = models.InvitationDeclined
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// CancelSessionInvitation lets the inviter withdraw a pending invitation.
func CancelSessionInvitation(db *gorm.DB, inv *models.SessionInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}
	if inv.InviterUsername != actor {
		return false, ReasonNotYourAsk, nil
	}

	inv.Status = models.InvitationCancelled
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// AcceptGroupInvitation flips a pending group invitation to accepted and
// inserts the membership row.
func AcceptGroupInvitation(db *gorm.DB, inv *models.GroupInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}
	if inv.InvitedUsername != actor {
		return false, ReasonNotYourInvite, nil
	}

	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}

	var existing models.GroupMember
	result := db.Where("group_id = ? AND username = ?", inv.GroupID, actor).First(&existing)
	if result.Error == nil {
		return true, "", nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return false, "", result.Error
	}
	member := models.GroupMember{
		GroupID:  inv.GroupID,
		Username: actor,
		JoinedAt: now,
	}
	if err := db.Create(&member).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// DeclineGroupInvitation flips a pending group invitation to declined.
func DeclineGroupInvitation(db *gorm.DB, inv *models.GroupInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}
	if inv.InvitedUsername != actor {
		return false, ReasonNotYourInvite, nil
	}

	inv.Status = models.InvitationDeclined
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}

// CancelGroupInvitation lets the inviter withdraw a pending group
// invitation.
func CancelGroupInvitation(db *gorm.DB, inv *models.GroupInvitation, actor string, now time.Time) (bool, string, error) {
	if !inv.IsPending() {
		return false, ReasonAlreadyAnswered, nil
	}
	if inv.InviterUsername != actor {
		return false, ReasonNotYourAsk, nil
	}

	inv.Status = models.InvitationCancelled
	inv.RespondedAt = &now
	if err := db.Save(inv).Error; err != nil {
		return false, "", err
	}
	return true, "", nil
}
