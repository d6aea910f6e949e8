package controllers

import (
	"Playnet/constants/platforms"
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/services/coordination"
	"Playnet/services/notifications"
	"Playnet/services/policy"
	"Playnet/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createSessionInput is the JSON body for creating a gaming session. Initial
// invitations ride along so the whole thing commits atomically.
type createSessionInput struct {
	Title           string   `json:"title"`
	GameName        string   `json:"game_name"`
	Platform        string   `json:"platform"`
	ScheduledAt     string   `json:"scheduled_at"` // RFC 3339
	MaxParticipants int      `json:"max_participants"`
	Privacy         string   `json:"privacy"`
	InviteUsernames []string `json:"invite_usernames"`
	InviteGroupIDs  []uint   `json:"invite_group_ids"`
	Message         string   `json:"message"`
}

func sessionResponse(db *gorm.DB, session *models.GamingSession) gin.H {
	joined, _ := coordination.JoinedCount(db, session.ID)
	return gin.H{
		"id":               session.ID,
		"host":             session.HostUsername,
		"title":            session.Title,
		"game_name":        session.GameName,
		"platform":         session.Platform,
		"scheduled_at":     session.ScheduledAt,
		"max_participants": session.MaxParticipants,
		"joined_count":     joined,
		"status":           session.Status,
		"privacy":          session.Privacy,
	}
}

// @Summary Create a gaming session
// @Description Creates a session with optional initial invitations to users
// and groups. Everything commits in one transaction.
// @Tags sessions
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param session body createSessionInput true "Session to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/sessions [post]
// @Security ApiKeyAuth
func CreateSession(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		var input createSessionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		input.Title = strings.TrimSpace(input.Title)
		input.GameName = strings.TrimSpace(input.GameName)
		if input.Title == "" || input.GameName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and game name are required"})
			return
		}
		if input.Platform != "" && !platforms.IsValid(strings.ToLower(input.Platform)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
			return
		}
		if input.Privacy == "" {
			input.Privacy = models.PrivacyPublic
		}
		if !models.ValidPrivacy(input.Privacy) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown privacy mode"})
			return
		}
		scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be an RFC 3339 timestamp"})
			return
		}
		if scheduledAt.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sessions cannot be scheduled in the past"})
			return
		}
		if input.MaxParticipants == 0 {
			input.MaxParticipants = 4
		}
		if input.MaxParticipants < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A session needs room for at least 2 players"})
			return
		}

		session := models.GamingSession{
			HostUsername:    user.ProfileUsername,
			Title:           input.Title,
			GameName:        input.GameName,
			Platform:        strings.ToLower(input.Platform),
			ScheduledAt:     scheduledAt,
			MaxParticipants: input.MaxParticipants,
			Status:          models.SessionScheduled,
			Privacy:         input.Privacy,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
			for _, username := range input.InviteUsernames {
				username := username
				if username == user.ProfileUsername {
					continue
				}
				inv := models.SessionInvitation{
					SessionID:       session.ID,
					InviterUsername: user.ProfileUsername,
					InvitedUsername: &username,
					Message:         input.Message,
				}
				if err := tx.Create(&inv).Error; err != nil {
					return err
				}
			}
			for _, groupID := range input.InviteGroupIDs {
				groupID := groupID
				inv := models.SessionInvitation{
					SessionID:       session.ID,
					InviterUsername: user.ProfileUsername,
					InvitedGroupID:  &groupID,
					Message:         input.Message,
				}
				if err := tx.Create(&inv).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating session"})
			return
		}

		notifier.Notify(input.InviteUsernames, notifications.SessionInvite{
			SessionID: session.ID,
			Title:     session.Title,
			From:      user.ProfileUsername,
			Message:   input.Message,
		})
		c.JSON(http.StatusCreated, gin.H{"message": "Session created", "session": sessionResponse(db, &session)})
	}
}

// @Summary List visible sessions
// @Description Returns upcoming public and friends-only sessions, plus
// invite-only sessions the user hosts, joined or was invited to.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} object{error=string}
// @Router /auth/sessions [get]
// @Security ApiKeyAuth
func ListSessions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		var sessions []models.GamingSession
		if err := db.Where("status IN (?)", []string{models.SessionScheduled, models.SessionActive}).
			Order("scheduled_at ASC").Find(&sessions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching sessions"})
			return
		}

		visible := make([]gin.H, 0, len(sessions))
		for i := range sessions {
			ok, err := policy.CanViewSession(db, &sessions[i], user.ProfileUsername)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching sessions"})
				return
			}
			if ok {
				visible = append(visible, sessionResponse(db, &sessions[i]))
			}
		}
		c.JSON(http.StatusOK, visible)
	}
}

// @Summary Get session detail
// @Description Returns the session with its participant list. Invite-only
// sessions are hidden from outsiders.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id} [get]
// @Security ApiKeyAuth
func GetSessionInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		ok, err := policy.CanViewSession(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching session"})
			return
		}
		if !ok {
			// Hidden sessions look like missing ones
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		var participants []models.SessionParticipant
		db.Where("session_id = ? AND status = ?", session.ID, models.ParticipantJoined).
			Order("joined_at ASC").Find(&participants)

		participantList := make([]gin.H, len(participants))
		for i, p := range participants {
			participantList[i] = gin.H{
				"username":  p.Username,
				"icon":      utils.UserIcon(db, p.Username),
				"joined_at": p.JoinedAt,
			}
		}

		response := sessionResponse(db, session)
		response["participants"] = participantList
		c.JSON(http.StatusOK, response)
	}
}

// updateSessionInput is the JSON body for editing a scheduled session.
type updateSessionInput struct {
	Title           string `json:"title"`
	ScheduledAt     string `json:"scheduled_at"`
	MaxParticipants int    `json:"max_participants"`
}

// @Summary Update a session
// @Description Edits title, schedule or capacity of a scheduled session.
// Host only; capacity never shrinks below the current participant count.
// @Tags sessions
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param session body updateSessionInput true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id} [patch]
// @Security ApiKeyAuth
func UpdateSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		if session.HostUsername != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": coordination.ReasonHostOnly})
			return
		}
		if session.Status != models.SessionScheduled {
			c.JSON(http.StatusForbidden, gin.H{"error": coordination.ReasonNotScheduled})
			return
		}

		var input updateSessionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if title := strings.TrimSpace(input.Title); title != "" {
			session.Title = title
		}
		if input.ScheduledAt != "" {
			scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be an RFC 3339 timestamp"})
				return
			}
			if scheduledAt.Before(time.Now()) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Sessions cannot be scheduled in the past"})
				return
			}
			session.ScheduledAt = scheduledAt
		}
		if input.MaxParticipants != 0 {
			joined, err := coordination.JoinedCount(db, session.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating session"})
				return
			}
			if input.MaxParticipants < 2 || int64(input.MaxParticipants) < joined {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity cannot drop below the current participants"})
				return
			}
			session.MaxParticipants = input.MaxParticipants
		}

		if err := db.Save(session).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Session updated", "session": sessionResponse(db, session)})
	}
}

// sessionAction runs a coordination lifecycle function and maps the result to
// an HTTP response. All three transitions share this shape.
func sessionAction(db *gorm.DB, action func(*gorm.DB, *models.GamingSession, string) (bool, string, error), successMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		ok, reason, err := action(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating session"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": successMessage, "status": session.Status})
	}
}

// @Summary Start a session
// @Description Moves a scheduled session to active. Host only.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} object{message=string,status=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/start [post]
// @Security ApiKeyAuth
func StartSession(db *gorm.DB) gin.HandlerFunc {
	return sessionAction(db, coordination.StartSession, "Session started")
}

// @Summary Complete a session
// @Description Moves an active session to completed. Host only.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} object{message=string,status=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/complete [post]
// @Security ApiKeyAuth
func CompleteSession(db *gorm.DB) gin.HandlerFunc {
	return sessionAction(db, coordination.CompleteSession, "Session completed")
}

// @Summary Cancel a session
// @Description Soft-cancels a scheduled session and notifies participants.
// Host only; the row is kept for history.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} object{message=string,status=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/cancel [post]
// @Security ApiKeyAuth
func CancelSession(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		ok, reason, err := coordination.CancelSession(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling session"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}

		var participants []models.SessionParticipant
		db.Where("session_id = ? AND status = ?", session.ID, models.ParticipantJoined).Find(&participants)
		recipients := make([]string, len(participants))
		for i, p := range participants {
			recipients[i] = p.Username
		}
		notifier.Notify(recipients, notifications.SessionCancelled{
			SessionID: session.ID,
			Title:     session.Title,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Session cancelled", "status": session.Status})
	}
}

// @Summary Join a session
// @Description Joins the session when the eligibility checks pass. The join
// runs in a transaction so the capacity check and the insert are atomic.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/join [post]
// @Security ApiKeyAuth
func JoinSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		var reason string
		var allowed bool
		err = db.Transaction(func(tx *gorm.DB) error {
			allowed, reason, err = coordination.JoinSession(tx, session, user.ProfileUsername, time.Now())
			return err
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error joining session"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Joined session"})
	}
}

// @Summary Leave a session
// @Description Marks the caller's participation as left. The host cannot
// leave, only cancel.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/leave [post]
// @Security ApiKeyAuth
func LeaveSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		ok, reason, err := coordination.LeaveSession(db, session, user.ProfileUsername, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leaving session"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Left session"})
	}
}

// @Summary Kick a participant
// @Description Removes a participant from the session. Host only; the host
// itself cannot be kicked.
// @Tags sessions
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param username path string true "Participant to kick"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/participants/{username} [delete]
// @Security ApiKeyAuth
func KickParticipant(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		target := c.Param("username")
		ok, reason, err := coordination.KickParticipant(db, session, user.ProfileUsername, target, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error kicking participant"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}

		notifier.Notify([]string{target}, notifications.ParticipantKicked{
			SessionID: session.ID,
			Title:     session.Title,
		})
		c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
	}
}

// @Summary Invite to a session
// @Description Sends a session invitation to a user or to a whole group.
// Host and current participants may invite.
// @Tags sessions
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param username formData string false "User to invite"
// @Param group_id formData integer false "Group to invite"
// @Param message formData string false "Optional message"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/invitations [post]
// @Security ApiKeyAuth
func InviteToSession(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		session, err := utils.CheckSessionExists(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		canInvite, err := policy.CanPostMessage(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if !canInvite {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the host and participants can invite"})
			return
		}

		invitedUsername := strings.TrimSpace(c.PostForm("username"))
		groupIDParam := strings.TrimSpace(c.PostForm("group_id"))
		if (invitedUsername == "") == (groupIDParam == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invite exactly one user or one group"})
			return
		}

		inv := models.SessionInvitation{
			SessionID:       session.ID,
			InviterUsername: user.ProfileUsername,
			Message:         c.PostForm("message"),
		}
		var recipients []string

		if invitedUsername != "" {
			var profile models.GameProfile
			if err := db.Where("username = ?", invitedUsername).First(&profile).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "That user does not exist"})
				return
			}
			var pending int64
			db.Model(&models.SessionInvitation{}).
				Where("session_id = ? AND invited_username = ? AND status = ?",
					session.ID, invitedUsername, models.InvitationPending).
				Count(&pending)
			if pending > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "That user already has a pending invitation"})
				return
			}
			inv.InvitedUsername = &invitedUsername
			recipients = []string{invitedUsername}
		} else {
			group, err := parseGroupID(groupIDParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
				return
			}
			if _, err := utils.CheckGroupExists(db, group); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "That group does not exist"})
				return
			}
			inv.InvitedGroupID = &group

			var members []models.GroupMember
			db.Where("group_id = ?", group).Find(&members)
			for _, member := range members {
				if member.Username != user.ProfileUsername {
					recipients = append(recipients, member.Username)
				}
			}
		}

		if err := db.Create(&inv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating invitation"})
			return
		}

		notifier.Notify(recipients, notifications.SessionInvite{
			SessionID: session.ID,
			Title:     session.Title,
			From:      user.ProfileUsername,
			Message:   inv.Message,
		})
		c.JSON(http.StatusCreated, gin.H{"message": "Invitation sent", "invitation_id": inv.ID})
	}
}
