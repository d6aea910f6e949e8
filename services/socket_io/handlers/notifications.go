package handlers

import (
	"Playnet/services/redis"
	redis_utils "Playnet/services/redis/utils"
	socketio_types "Playnet/services/socket_io/types"
	"encoding/json"
	"log"
)

// ForwardNotifications relays the pub/sub notification events onto the
// socket of their target user, when that user has a connection open.
// Offline users simply miss the push and find the change through the inbox
// endpoints instead. Runs until the subscription closes, meant to be
// started as a goroutine.
func ForwardNotifications(redisClient *redis.RedisClient, sio *socketio_types.SocketServer) {
	if redisClient == nil {
		return
	}
	sub := redisClient.SubscribeNotifications()
	for msg := range sub.Channel() {
		username := redis_utils.UsernameFromNotificationChannel(msg.Channel)
		if username == "" {
			continue
		}
		client, connected := sio.GetConnection(username)
		if !connected {
			continue
		}

		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("[SOCKET-NOTIFY-ERROR] Decoding event for %s: %v", username, err)
			continue
		}
		client.Emit("notification", payload)
	}
}
