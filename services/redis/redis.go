package redis

import (
	redis_models "Playnet/models/redis"
	redis_utils "Playnet/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// How many chat entries we keep per session for the polling endpoint.
const chatBacklogSize = 50

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(addr string, db int) *RedisClient {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SetPlayerPresence stores a player's presence entry with a TTL so stale
// entries expire on their own when a client vanishes without disconnecting.
func (rc *RedisClient) SetPlayerPresence(presence *redis_models.PlayerPresence, ttl time.Duration) error {
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error serializing presence: %v", err)
	}
	key := redis_utils.FormatPresenceKey(presence.Username)
	if err := rc.Client.Set(rc.Ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("error saving presence to Redis: %v", err)
	}
	return nil
}

// GetPlayerPresence returns the presence entry for a user, or nil when the
// user has no live entry (treated as offline by callers).
func (rc *RedisClient) GetPlayerPresence(username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(username)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading presence from Redis: %v", err)
	}
	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error deserializing presence: %v", err)
	}
	return &presence, nil
}

// DeletePlayerPresence removes a user's presence entry.
func (rc *RedisClient) DeletePlayerPresence(username string) error {
	key := redis_utils.FormatPresenceKey(username)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence from Redis: %v", err)
	}
	return nil
}

// PushSessionChatMessage appends a chat entry to the session's capped
// backlog list.
func (rc *RedisClient) PushSessionChatMessage(msg *redis_models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error serializing chat message: %v", err)
	}
	key := redis_utils.FormatSessionChatKey(msg.SessionID)
	pipe := rc.Client.TxPipeline()
	pipe.LPush(rc.Ctx, key, data)
	pipe.LTrim(rc.Ctx, key, 0, chatBacklogSize-1)
	if _, err := pipe.Exec(rc.Ctx); err != nil {
		return fmt.Errorf("error pushing chat message to Redis: %v", err)
	}
	return nil
}

// GetSessionChatBacklog returns the cached chat entries of a session,
// oldest first.
func (rc *RedisClient) GetSessionChatBacklog(sessionID string) ([]redis_models.ChatMessage, error) {
	key := redis_utils.FormatSessionChatKey(sessionID)
	raw, err := rc.Client.LRange(rc.Ctx, key, 0, chatBacklogSize-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading chat backlog from Redis: %v", err)
	}
	messages := make([]redis_models.ChatMessage, 0, len(raw))
	// LPUSH stores newest first, walk backwards
	for i := len(raw) - 1; i >= 0; i-- {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DropSessionChatBacklog throws away a session's cached chat entries.
// Called when an edit or delete makes the backlog stale; readers fall back
// to Postgres until new messages repopulate it.
func (rc *RedisClient) DropSessionChatBacklog(sessionID string) error {
	return rc.CleanupKeys([]string{redis_utils.FormatSessionChatKey(sessionID)})
}

// CacheCompatibilityReport stores a serialized scorer report for a user pair.
func (rc *RedisClient) CacheCompatibilityReport(username1, username2 string, report []byte, ttl time.Duration) error {
	key := redis_utils.FormatCompatibilityKey(username1, username2)
	if err := rc.Client.Set(rc.Ctx, key, report, ttl).Err(); err != nil {
		return fmt.Errorf("error caching compatibility report: %v", err)
	}
	return nil
}

// GetCachedCompatibilityReport returns the cached report for a pair, or nil
// on a miss.
func (rc *RedisClient) GetCachedCompatibilityReport(username1, username2 string) ([]byte, error) {
	key := redis_utils.FormatCompatibilityKey(username1, username2)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading cached compatibility report: %v", err)
	}
	return data, nil
}

// Publish sends a payload on a channel, fire-and-forget semantics are the
// caller's concern.
func (rc *RedisClient) Publish(channel string, payload []byte) error {
	return rc.Client.Publish(rc.Ctx, channel, payload).Err()
}

// SubscribeNotifications opens a pattern subscription covering every
// per-user notification channel. The caller owns the returned handle.
func (rc *RedisClient) SubscribeNotifications() *redis.PubSub {
	return rc.Client.PSubscribe(rc.Ctx, redis_utils.FormatNotificationChannel("*"))
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
