package controllers

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/services/coordination"
	"Playnet/utils"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetAllReceivedConnectionRequests godoc
// @Summary Get pending connection requests for the authenticated user
// @Description Retrieve all pending connection requests where the
// authenticated user is the recipient, with each sender's public info.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} map[string]interface{} "received_connection_requests"
// @Failure 404 {object} map[string]string "error: User not found"
// @Failure 500 {object} map[string]string "error: Error retrieving requests"
// @Router /auth/inbox/connection-requests [get]
// @Security ApiKeyAuth
func GetAllReceivedConnectionRequests(db *gorm.DB) gin.HandlerFunc {
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
		username := user.ProfileUsername

		var connections []models.Connection
		if err := db.Where("(username_a = ? OR username_b = ?) AND status = ? AND requester != ?",
			username, username, models.ConnectionPending, username).
			Find(&connections).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving received connection requests"})
			return
		}

		requestsInfo := make([]gin.H, 0, len(connections))
		for _, conn := range connections {
			requestsInfo = append(requestsInfo, gin.H{
				"username": conn.Requester,
				"icon":     utils.UserIcon(db, conn.Requester),
				"message":  conn.Message,
				"sent_at":  conn.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"received_connection_requests": requestsInfo})
	}
}

// GetAllSentConnectionRequests godoc
// @Summary Get pending connection requests sent by the authenticated user
// @Description Retrieve all pending connection requests where the
// authenticated user is the sender, with each recipient's public info.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} map[string]interface{} "sent_connection_requests"
// @Failure 404 {object} map[string]string "error: User not found"
// @Failure 500 {object} map[string]string "error: Error retrieving requests"
// @Router /auth/inbox/sent-connection-requests [get]
// @Security ApiKeyAuth
func GetAllSentConnectionRequests(db *gorm.DB) gin.HandlerFunc {
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
		username := user.ProfileUsername

		var connections []models.Connection
		if err := db.Where("requester = ? AND status = ?", username, models.ConnectionPending).
			Find(&connections).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving sent connection requests"})
			return
		}

		requestsInfo := make([]gin.H, 0, len(connections))
		for _, conn := range connections {
			recipient := conn.Recipient()
			requestsInfo = append(requestsInfo, gin.H{
				"username": recipient,
				"icon":     utils.UserIcon(db, recipient),
				"sent_at":  conn.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"sent_connection_requests": requestsInfo})
	}
}

// GetAllReceivedSessionInvitations godoc
// @Summary Get pending session invitations for the authenticated user
// @Description Retrieve pending session invitations addressed to the user
// directly or to a group the user belongs to.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} map[string]interface{} "session_invitations"
// @Failure 404 {object} map[string]string "error: User not found"
// @Failure 500 {object} map[string]string "error: Error retrieving invitations"
// @Router /auth/inbox/session-invitations [get]
// @Security ApiKeyAuth
func GetAllReceivedSessionInvitations(db *gorm.DB) gin.HandlerFunc {
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
		username := user.ProfileUsername

		var invitations []models.SessionInvitation
		if err := db.Preload("GamingSession").
			Where("status = ? AND (invited_username = ? OR invited_group_id IN (?))",
				models.InvitationPending, username,
				db.Model(&models.GroupMember{}).Select("group_id").Where("username = ?", username)).
			Find(&invitations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving session invitations"})
			return
		}

		invitationsInfo := make([]gin.H, 0, len(invitations))
		for _, inv := range invitations {
			invitationsInfo = append(invitationsInfo, gin.H{
				"invitation_id": inv.ID,
				"session_id":    inv.SessionID,
				"title":         inv.GamingSession.Title,
				"game_name":     inv.GamingSession.GameName,
				"scheduled_at":  inv.GamingSession.ScheduledAt,
				"inviter":       inv.InviterUsername,
				"icon":          utils.UserIcon(db, inv.InviterUsername),
				"message":       inv.Message,
				"via_group":     inv.InvitedGroupID,
			})
		}
		c.JSON(http.StatusOK, gin.H{"session_invitations": invitationsInfo})
	}
}

// GetAllReceivedGroupInvitations godoc
// @Summary Get pending group invitations for the authenticated user
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} map[string]interface{} "group_invitations"
// @Failure 404 {object} map[string]string "error: User not found"
// @Failure 500 {object} map[string]string "error: Error retrieving invitations"
// @Router /auth/inbox/group-invitations [get]
// @Security ApiKeyAuth
func GetAllReceivedGroupInvitations(db *gorm.DB) gin.HandlerFunc {
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

		var invitations []models.GroupInvitation
		if err := db.Preload("Group").
			Where("invited_username = ? AND status = ?", user.ProfileUsername, models.InvitationPending).
			Find(&invitations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving group invitations"})
			return
		}

		invitationsInfo := make([]gin.H, 0, len(invitations))
		for _, inv := range invitations {
			invitationsInfo = append(invitationsInfo, gin.H{
				"invitation_id": inv.ID,
				"group_id":      inv.GroupID,
				"group_name":    inv.Group.Name,
				"inviter":       inv.InviterUsername,
				"icon":          utils.UserIcon(db, inv.InviterUsername),
				"message":       inv.Message,
			})
		}
		c.JSON(http.StatusOK, gin.H{"group_invitations": invitationsInfo})
	}
}

// loadSessionInvitation resolves the invitation addressed by the route.
func loadSessionInvitation(c *gin.Context, db *gorm.DB) (*models.SessionInvitation, bool) {
	invitationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation id"})
		return nil, false
	}
	var inv models.SessionInvitation
	if err := db.Where("id = ?", invitationID).First(&inv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return nil, false
	}
	return &inv, true
}

// respondSessionInvitation maps a coordination invitation answer to HTTP.
// Accepts run in a transaction because of the membership side effect.
func respondSessionInvitation(db *gorm.DB, accept bool) gin.HandlerFunc {
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

		inv, ok := loadSessionInvitation(c, db)
		if !ok {
			return
		}

		var allowed bool
		var reason string
		err = db.Transaction(func(tx *gorm.DB) error {
			if accept {
				allowed, reason, err = coordination.AcceptSessionInvitation(tx, inv, user.ProfileUsername, time.Now())
			} else {
				allowed, reason, err = coordination.DeclineSessionInvitation(tx, inv, user.ProfileUsername, time.Now())
			}
			return err
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering invitation"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		if accept {
			c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "session_id": inv.SessionID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
	}
}

// @Summary Accept a session invitation
// @Description Accepts a pending session invitation and joins the session.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string,session_id=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/session-invitations/{id}/accept [post]
// @Security ApiKeyAuth
func AcceptSessionInvitation(db *gorm.DB) gin.HandlerFunc {
	return respondSessionInvitation(db, true)
}

// @Summary Decline a session invitation
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/session-invitations/{id}/decline [post]
// @Security ApiKeyAuth
func DeclineSessionInvitation(db *gorm.DB) gin.HandlerFunc {
	return respondSessionInvitation(db, false)
}

// @Summary Cancel a session invitation
// @Description Withdraws a pending session invitation. Inviter only.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/session-invitations/{id} [delete]
// @Security ApiKeyAuth
func CancelSessionInvitation(db *gorm.DB) gin.HandlerFunc {
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

		inv, ok := loadSessionInvitation(c, db)
		if !ok {
			return
		}

		allowed, reason, err := coordination.CancelSessionInvitation(db, inv, user.ProfileUsername, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling invitation"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
	}
}

// loadGroupInvitation resolves the group invitation addressed by the route.
func loadGroupInvitation(c *gin.Context, db *gorm.DB) (*models.GroupInvitation, bool) {
	invitationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation id"})
		return nil, false
	}
	var inv models.GroupInvitation
	if err := db.Where("id = ?", invitationID).First(&inv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return nil, false
	}
	return &inv, true
}

// @Summary Accept a group invitation
// @Description Accepts a pending group invitation and joins the group.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string,group_id=integer}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/group-invitations/{id}/accept [post]
// @Security ApiKeyAuth
func AcceptGroupInvitation(db *gorm.DB) gin.HandlerFunc {
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

		inv, ok := loadGroupInvitation(c, db)
		if !ok {
			return
		}

		var allowed bool
		var reason string
		err = db.Transaction(func(tx *gorm.DB) error {
			allowed, reason, err = coordination.AcceptGroupInvitation(tx, inv, user.ProfileUsername, time.Now())
			return err
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering invitation"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "group_id": inv.GroupID})
	}
}

// @Summary Decline a group invitation
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/group-invitations/{id}/decline [post]
// @Security ApiKeyAuth
func DeclineGroupInvitation(db *gorm.DB) gin.HandlerFunc {
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

		inv, ok := loadGroupInvitation(c, db)
		if !ok {
			return
		}

		allowed, reason, err := coordination.DeclineGroupInvitation(db, inv, user.ProfileUsername, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering invitation"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
	}
}

// @Summary Cancel a group invitation
// @Description Withdraws a pending group invitation. Inviter only.
// @Tags inbox
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Invitation id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/inbox/group-invitations/{id} [delete]
// @Security ApiKeyAuth
func CancelGroupInvitation(db *gorm.DB) gin.HandlerFunc {
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

		inv, ok := loadGroupInvitation(c, db)
		if !ok {
			return
		}

		allowed, reason, err := coordination.CancelGroupInvitation(db, inv, user.ProfileUsername, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling invitation"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
	}
}
