package controllers

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/services/notifications"
	"Playnet/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// connectionBetween loads the (unique) edge between two users, any status.
func connectionBetween(db *gorm.DB, a, b string) (*models.Connection, error) {
	if b < a {
		a, b = b, a
	}
	var conn models.Connection
	if err := db.Where("username_a = ? AND username_b = ?", a, b).First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// @Summary Send a connection request
// @Description Creates a pending connection towards another user. Blocked
// pairs and existing edges are rejected.
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username formData string true "User to connect with"
// @Param message formData string false "Optional message"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/connections [post]
// @Security ApiKeyAuth
func SendConnectionRequest(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
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

		target := strings.TrimSpace(c.PostForm("username"))
		if target == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
			return
		}
		if target == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot add yourself as a friend"})
			return
		}

		var targetProfile models.GameProfile
		if err := db.Where("username = ?", target).First(&targetProfile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "That user does not exist"})
			return
		}

		existing, err := connectionBetween(db, user.ProfileUsername, target)
		if err == nil {
			switch existing.Status {
			case models.ConnectionBlocked:
				c.JSON(http.StatusConflict, gin.H{"error": "You cannot connect with this user"})
			case models.ConnectionAccepted:
				c.JSON(http.StatusConflict, gin.H{"error": "You are already friends"})
			case models.ConnectionPending:
				c.JSON(http.StatusConflict, gin.H{"error": "A request is already pending"})
			default:
				// A declined edge can be re-asked: reset it to pending
				existing.Status = models.ConnectionPending
				existing.Requester = user.ProfileUsername
				existing.Message = c.PostForm("message")
				if err := db.Save(existing).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending request"})
					return
				}
				notifier.Notify([]string{target}, notifications.ConnectionRequested{
					From:    user.ProfileUsername,
					Message: existing.Message,
				})
				c.JSON(http.StatusCreated, gin.H{"message": "Connection request sent"})
			}
			return
		}
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading connections"})
			return
		}

		conn := models.Connection{
			UsernameA: user.ProfileUsername,
			UsernameB: target,
			Requester: user.ProfileUsername,
			Status:    models.ConnectionPending,
			Message:   c.PostForm("message"),
		}
		if err := db.Create(&conn).Error; err != nil {
			// The sorted-pair primary key turns a concurrent duplicate into a
			// constraint error here
			c.JSON(http.StatusConflict, gin.H{"error": "A request is already pending"})
			return
		}

		notifier.Notify([]string{target}, notifications.ConnectionRequested{
			From:    user.ProfileUsername,
			Message: conn.Message,
		})
		c.JSON(http.StatusCreated, gin.H{"message": "Connection request sent"})
	}
}

// @Summary Accept a connection request
// @Description Accepts the pending request from another user. Only the
// recipient may accept.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "Requesting user"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/connections/{username}/accept [post]
// @Security ApiKeyAuth
func AcceptConnectionRequest(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
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

		other := c.Param("username")
		conn, err := connectionBetween(db, user.ProfileUsername, other)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No request from that user"})
			return
		}
		if !conn.IsPending() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This request has already been answered"})
			return
		}
		if conn.Recipient() != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "This request is not addressed to you"})
			return
		}

		now := time.Now()
		conn.Status = models.ConnectionAccepted
		conn.AcceptedAt = &now
		if err := db.Save(conn).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error accepting request"})
			return
		}

		notifier.Notify([]string{conn.Requester}, notifications.ConnectionAccepted{
			By: user.ProfileUsername,
		})
		c.JSON(http.StatusOK, gin.H{"message": "Connection accepted"})
	}
}

// @Summary Decline a connection request
// @Description Declines the pending request from another user.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "Requesting user"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/connections/{username}/decline [post]
// @Security ApiKeyAuth
func DeclineConnectionRequest(db *gorm.DB) gin.HandlerFunc {
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

		other := c.Param("username")
		conn, err := connectionBetween(db, user.ProfileUsername, other)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No request from that user"})
			return
		}
		if !conn.IsPending() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This request has already been answered"})
			return
		}
		if conn.Recipient() != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "This request is not addressed to you"})
			return
		}

		conn.Status = models.ConnectionDeclined
		if err := db.Save(conn).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error declining request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Connection declined"})
	}
}

// @Summary Cancel a sent connection request
// @Description Withdraws a pending request the user sent. The edge row is
// removed so it can be re-created later.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "Requested user"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/connections/{username} [delete]
// @Security ApiKeyAuth
func CancelConnectionRequest(db *gorm.DB) gin.HandlerFunc {
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

		other := c.Param("username")
		conn, err := connectionBetween(db, user.ProfileUsername, other)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No request towards that user"})
			return
		}
		if !conn.IsPending() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This request has already been answered"})
			return
		}
		if conn.Requester != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the sender can cancel a request"})
			return
		}

		if err := db.Where("username_a = ? AND username_b = ?", conn.UsernameA, conn.UsernameB).
			Delete(&models.Connection{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
	}
}

// @Summary Block a user
// @Description Blocks another user. Any existing edge is overwritten; the
// pair can no longer exchange requests.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "User to block"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/connections/{username}/block [post]
// @Security ApiKeyAuth
func BlockUser(db *gorm.DB) gin.HandlerFunc {
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

		other := c.Param("username")
		if other == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot block yourself"})
			return
		}
		var targetProfile models.GameProfile
		if err := db.Where("username = ?", other).First(&targetProfile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "That user does not exist"})
			return
		}

		conn, err := connectionBetween(db, user.ProfileUsername, other)
		switch {
		case err == gorm.ErrRecordNotFound:
			blocked := models.Connection{
				UsernameA: user.ProfileUsername,
				UsernameB: other,
				Requester: user.ProfileUsername,
				Status:    models.ConnectionBlocked,
			}
			if err := db.Create(&blocked).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error blocking user"})
				return
			}
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading connections"})
			return
		default:
			conn.Requester = user.ProfileUsername
			conn.Status = models.ConnectionBlocked
			conn.AcceptedAt = nil
			if err := db.Save(conn).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error blocking user"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
	}
}

// @Summary Remove a friend
// @Description Deletes an accepted connection. Either side may unfriend.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "Friend to remove"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/friends/{username} [delete]
// @Security ApiKeyAuth
func RemoveFriend(db *gorm.DB) gin.HandlerFunc {
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

		other := c.Param("username")
		conn, err := connectionBetween(db, user.ProfileUsername, other)
		if err != nil || conn.Status != models.ConnectionAccepted {
			c.JSON(http.StatusNotFound, gin.H{"error": "You are not friends with that user"})
			return
		}

		if err := db.Where("username_a = ? AND username_b = ?", conn.UsernameA, conn.UsernameB).
			Delete(&models.Connection{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing friend"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
	}
}

// @Summary Get a list of a user friends
// @Description Returns the accepted connections of the authenticated user
// with each friend's public info.
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{username=string,icon=integer,friends_since=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/friends [get]
// @Security ApiKeyAuth
func ListFriends(db *gorm.DB) gin.HandlerFunc {
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
		result := db.Where("(username_a = ? OR username_b = ?) AND status = ?",
			username, username, models.ConnectionAccepted).Find(&connections)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friends"})
			return
		}

		friends := make([]gin.H, 0, len(connections))
		for _, conn := range connections {
			friendUsername := conn.Other(username)
			friends = append(friends, gin.H{
				"username":      friendUsername,
				"icon":          utils.UserIcon(db, friendUsername),
				"friends_since": conn.AcceptedAt,
			})
		}
		c.JSON(http.StatusOK, friends)
	}
}
