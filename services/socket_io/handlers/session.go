package handlers

import (
	models "Playnet/models/postgres"
	redis_models "Playnet/models/redis"
	"Playnet/services/policy"
	"Playnet/services/redis"
	socketio_types "Playnet/services/socket_io/types"
	"Playnet/utils"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Presence entries expire on their own when a client vanishes silently.
const presenceTTL = 2 * time.Minute

func sessionRoom(sessionID string) socket.Room {
	return socket.Room(fmt.Sprintf("session:%s", sessionID))
}

// HandleJoinSession puts the socket into the room of a session the user
// already belongs to (joined via the API first). Room membership is what
// makes the live chat broadcasts reach the client.
func HandleJoinSession(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing session id"})
			return
		}
		sessionID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Session id must be a string"})
			return
		}

		session, err := utils.CheckSessionExists(db, sessionID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Session not found"})
			return
		}

		member, err := policy.CanPostMessage(db, session, username)
		if err != nil {
			log.Printf("[SOCKET-JOIN-ERROR] Membership check failed for %s: %v", username, err)
			client.Emit("error", gin.H{"error": "Database error"})
			return
		}
		if !member {
			client.Emit("error", gin.H{"error": "You must join the session before opening its chat"})
			return
		}

		client.Join(sessionRoom(sessionID))

		err = redisClient.SetPlayerPresence(&redis_models.PlayerPresence{
			Username: username,
			Status:   redis_models.StatusInGame,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}, presenceTTL)
		if err != nil {
			log.Printf("[SOCKET-PRESENCE-ERROR] %v", err)
		}

		client.Emit("joined_session", gin.H{"session_id": sessionID})
		client.To(sessionRoom(sessionID)).Emit("participant_online", gin.H{
			"session_id": sessionID,
			"username":   username,
		})
	}
}

// HandleLeaveSession removes the socket from a session room.
func HandleLeaveSession(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing session id"})
			return
		}
		sessionID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Session id must be a string"})
			return
		}

		client.Leave(sessionRoom(sessionID))

		err := redisClient.SetPlayerPresence(&redis_models.PlayerPresence{
			Username: username,
			Status:   redis_models.StatusOnline,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}, presenceTTL)
		if err != nil {
			log.Printf("[SOCKET-PRESENCE-ERROR] %v", err)
		}

		client.To(sessionRoom(sessionID)).Emit("participant_offline", gin.H{
			"session_id": sessionID,
			"username":   username,
		})
	}
}

// HandleSessionMessage persists a chat message and broadcasts it to the
// session room. The row in Postgres is the source of truth, the Redis
// backlog only feeds the polling endpoint.
func HandleSessionMessage(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Expected session id and message body"})
			return
		}
		sessionID, ok1 := args[0].(string)
		body, ok2 := args[1].(string)
		if !ok1 || !ok2 || body == "" {
			client.Emit("error", gin.H{"error": "Session id and message body must be strings"})
			return
		}

		session, err := utils.CheckSessionExists(db, sessionID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Session not found"})
			return
		}

		allowed, err := policy.CanPostMessage(db, session, username)
		if err != nil {
			client.Emit("error", gin.H{"error": "Database error"})
			return
		}
		if !allowed {
			client.Emit("error", gin.H{"error": "You must join the session before sending messages"})
			return
		}

		msg := models.SessionMessage{
			SessionID:      sessionID,
			SenderUsername: username,
			Body:           body,
			Type:           models.MessageText,
		}
		if err := db.Create(&msg).Error; err != nil {
			log.Printf("[SOCKET-CHAT-ERROR] Persisting message from %s: %v", username, err)
			client.Emit("error", gin.H{"error": "Error sending message"})
			return
		}

		err = redisClient.PushSessionChatMessage(&redis_models.ChatMessage{
			ID:        msg.ID,
			SessionID: sessionID,
			Username:  username,
			Message:   body,
			Type:      msg.Type,
			Timestamp: msg.CreatedAt,
		})
		if err != nil {
			log.Printf("[SOCKET-CHAT-ERROR] Caching message: %v", err)
		}

		payload := gin.H{
			"id":         msg.ID,
			"session_id": sessionID,
			"sender":     username,
			"body":       body,
			"type":       msg.Type,
			"sent_at":    msg.CreatedAt,
		}
		client.Emit("new_session_message", payload)
		client.To(sessionRoom(sessionID)).Emit("new_session_message", payload)
	}
}

// HandleSetStatus updates the user's presence entry (online, afk, in_game).
func HandleSetStatus(redisClient *redis.RedisClient, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing status"})
			return
		}
		raw, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Status must be a string"})
			return
		}

		status := redis_models.PlayerStatus(raw)
		switch status {
		case redis_models.StatusOnline, redis_models.StatusAFK, redis_models.StatusInGame:
		default:
			client.Emit("error", gin.H{"error": "Unknown status"})
			return
		}

		err := redisClient.SetPlayerPresence(&redis_models.PlayerPresence{
			Username: username,
			Status:   status,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}, presenceTTL)
		if err != nil {
			log.Printf("[SOCKET-PRESENCE-ERROR] %v", err)
			client.Emit("error", gin.H{"error": "Error updating status"})
		}
	}
}

// HandleDisconnecting drops the connection from the map and clears the
// presence entry.
func HandleDisconnecting(redisClient *redis.RedisClient, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[SOCKET-DISCONNECT] %s disconnecting", username)
		sio.RemoveConnection(username)
		if err := redisClient.DeletePlayerPresence(username); err != nil {
			log.Printf("[SOCKET-PRESENCE-ERROR] Deleting presence of %s: %v", username, err)
		}
	}
}
