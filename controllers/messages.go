package controllers

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	redis_models "Playnet/models/redis"
	"Playnet/services/policy"
	"Playnet/services/redis"
	"Playnet/utils"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func messageResponse(msg *models.SessionMessage) gin.H {
	return gin.H{
		"id":        msg.ID,
		"sender":    msg.SenderUsername,
		"body":      msg.Body,
		"type":      msg.Type,
		"edited_at": msg.EditedAt,
		"sent_at":   msg.CreatedAt,
	}
}

// cacheChatMessage mirrors a persisted message into the session's Redis
// backlog. Best effort: the row in Postgres is the source of truth.
func cacheChatMessage(redisClient *redis.RedisClient, msg *models.SessionMessage) {
	if redisClient == nil {
		return
	}
	err := redisClient.PushSessionChatMessage(&redis_models.ChatMessage{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Username:  msg.SenderUsername,
		Message:   msg.Body,
		Type:      msg.Type,
		Timestamp: msg.CreatedAt,
	})
	if err != nil {
		log.Printf("Error caching chat message: %v", err)
	}
}

// evictChatBacklog drops a session's cached chat after an edit or delete so
// the polling fast path never serves stale entries. Best effort, same as
// caching itself.
func evictChatBacklog(redisClient *redis.RedisClient, sessionID string) {
	if redisClient == nil {
		return
	}
	if err := redisClient.DropSessionChatBacklog(sessionID); err != nil {
		log.Printf("Error evicting chat backlog for session %s: %v", sessionID, err)
	}
}

// @Summary Post a chat message
// @Description Appends a message to the session chat. Announcements are
// restricted to the host.
// @Tags messages
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param body formData string true "Message body"
// @Param type formData string false "Message type (text or announcement)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/messages [post]
// @Security ApiKeyAuth
func PostSessionMessage(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
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

		body := strings.TrimSpace(c.PostForm("body"))
		if body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body can't be empty"})
			return
		}

		messageType := c.DefaultPostForm("type", models.MessageText)
		if !models.ValidMessageType(messageType) || messageType == models.MessageSystem {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown message type"})
			return
		}

		allowed, err := policy.CanPostMessage(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the host and participants can write here"})
			return
		}
		if messageType == models.MessageAnnouncement && !policy.CanPostAnnouncement(session, user.ProfileUsername) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the host can post announcements"})
			return
		}

		msg := models.SessionMessage{
			SessionID:      session.ID,
			SenderUsername: user.ProfileUsername,
			Body:           body,
			Type:           messageType,
		}
		if err := db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending message"})
			return
		}

		cacheChatMessage(redisClient, &msg)
		c.JSON(http.StatusCreated, gin.H{"message": "Message sent", "chat_message": messageResponse(&msg)})
	}
}

// @Summary Read the session chat
// @Description Returns messages oldest first. The polling flavor passes
// after_id to only fetch what is new; small tails come from the Redis
// backlog when it is warm.
// @Tags messages
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param after_id query integer false "Only messages newer than this id"
// @Success 200 {array} map[string]interface{}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/messages [get]
// @Security ApiKeyAuth
func ListSessionMessages(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
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

		allowed, err := policy.CanPostMessage(db, session, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the host and participants can read here"})
			return
		}

		afterID := 0
		if raw := c.Query("after_id"); raw != "" {
			afterID, err = strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid after_id"})
				return
			}
		}

		// Polling fast path: the backlog is the coherent tail of the chat
		// (edits and deletes evict it), so once its oldest entry is at or
		// before after_id+1 it covers everything newer than after_id
		if afterID > 0 && redisClient != nil {
			if cached, err := redisClient.GetSessionChatBacklog(session.ID); err == nil && len(cached) > 0 {
				if cached[0].ID <= uint(afterID)+1 {
					fresh := make([]gin.H, 0)
					for i := range cached {
						if cached[i].ID > uint(afterID) {
							fresh = append(fresh, gin.H{
								"id":      cached[i].ID,
								"sender":  cached[i].Username,
								"body":    cached[i].Message,
								"type":    cached[i].Type,
								"sent_at": cached[i].Timestamp,
							})
						}
					}
					c.JSON(http.StatusOK, fresh)
					return
				}
			}
		}

		var messages []models.SessionMessage
		query := db.Where("session_id = ?", session.ID)
		if afterID > 0 {
			query = query.Where("id > ?", afterID)
		}
		if err := query.Order("id ASC").Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching messages"})
			return
		}

		response := make([]gin.H, len(messages))
		for i := range messages {
			response[i] = messageResponse(&messages[i])
		}
		c.JSON(http.StatusOK, response)
	}
}

// @Summary Edit a chat message
// @Description Replaces the body of one of the caller's own messages and
// marks it edited.
// @Tags messages
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param messageID path integer true "Message id"
// @Param body formData string true "New body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/messages/{messageID} [patch]
// @Security ApiKeyAuth
func EditSessionMessage(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
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

		msg, ok := loadSessionMessage(c, db)
		if !ok {
			return
		}

		if !policy.CanEditMessage(msg, user.ProfileUsername) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own messages"})
			return
		}

		body := strings.TrimSpace(c.PostForm("body"))
		if body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body can't be empty"})
			return
		}

		now := time.Now()
		msg.Body = body
		msg.EditedAt = &now
		if err := db.Save(msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error editing message"})
			return
		}

		evictChatBacklog(redisClient, msg.SessionID)
		c.JSON(http.StatusOK, gin.H{"message": "Message edited", "chat_message": messageResponse(msg)})
	}
}

// @Summary Delete a chat message
// @Description Hard-deletes a message. The author or the session host only.
// @Tags messages
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path string true "Session id"
// @Param messageID path integer true "Message id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/sessions/{id}/messages/{messageID} [delete]
// @Security ApiKeyAuth
func DeleteSessionMessage(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
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

		msg, ok := loadSessionMessage(c, db)
		if !ok {
			return
		}

		var session models.GamingSession
		if err := db.Where("id = ?", msg.SessionID).First(&session).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		if !policy.CanDeleteMessage(&session, msg, user.ProfileUsername) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or the host can delete a message"})
			return
		}

		if err := db.Delete(msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting message"})
			return
		}

		evictChatBacklog(redisClient, msg.SessionID)
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
	}
}

// loadSessionMessage resolves the message addressed by the route, checking
// that it belongs to the session in the path.
func loadSessionMessage(c *gin.Context, db *gorm.DB) (*models.SessionMessage, bool) {
	messageID, err := strconv.Atoi(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return nil, false
	}

	var msg models.SessionMessage
	if err := db.Where("id = ? AND session_id = ?", messageID, c.Param("id")).First(&msg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return nil, false
	}
	return &msg, true
}
