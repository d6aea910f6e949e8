package notifications

import (
	"Playnet/services/redis"
	redis_utils "Playnet/services/redis/utils"
	"encoding/json"
	"log"
	"time"
)

/**
 * Fire-and-forget user notifications over Redis pub/sub. Each notification
 * kind is its own struct so payloads stay strongly typed end to end; there
 * is no string-keyed payload map anywhere.
 */

// Event is implemented by every notification payload.
type Event interface {
	Event() string
}

type ConnectionRequested struct {
	From    string `json:"from"`
	Message string `json:"message,omitempty"`
}

func (ConnectionRequested) Event() string { return "connection_requested" }

type ConnectionAccepted struct {
	By string `json:"by"`
}

func (ConnectionAccepted) Event() string { return "connection_accepted" }

type SessionInvite struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	From      string `json:"from"`
	Message   string `json:"message,omitempty"`
}

func (SessionInvite) Event() string { return "session_invite" }

type SessionCancelled struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

func (SessionCancelled) Event() string { return "session_cancelled" }

type ParticipantKicked struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

func (ParticipantKicked) Event() string { return "participant_kicked" }

type GroupInvite struct {
	GroupID   uint   `json:"group_id"`
	GroupName string `json:"group_name"`
	From      string `json:"from"`
	Message   string `json:"message,omitempty"`
}

func (GroupInvite) Event() string { return "group_invite" }

// envelope is the wire shape published on the per-user channel.
type envelope struct {
	Event   string      `json:"event"`
	SentAt  time.Time   `json:"sent_at"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes events to each recipient's channel. Delivery is best
// effort; failures are logged and never bubble up to the request.
type Notifier struct {
	redisClient *redis.RedisClient
}

func NewNotifier(redisClient *redis.RedisClient) *Notifier {
	return &Notifier{redisClient: redisClient}
}

// Notify sends ev to every recipient. Safe to call with a nil Notifier or
// without a Redis connection (tests, tooling).
func (n *Notifier) Notify(recipients []string, ev Event) {
	if n == nil || n.redisClient == nil {
		return
	}
	data, err := json.Marshal(envelope{
		Event:   ev.Event(),
		SentAt:  time.Now(),
		Payload: ev,
	})
	if err != nil {
		log.Printf("[NOTIFY-ERROR] serializing %s: %v", ev.Event(), err)
		return
	}
	for _, recipient := range recipients {
		channel := redis_utils.FormatNotificationChannel(recipient)
		if err := n.redisClient.Publish(channel, data); err != nil {
			log.Printf("[NOTIFY-ERROR] publishing %s to %s: %v", ev.Event(), recipient, err)
		}
	}
}
