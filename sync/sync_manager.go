package sync

import (
	"Playnet/services/redis"
	redis_utils "Playnet/services/redis/utils"
	"database/sql"
	"fmt"
	"log"
)

// SyncManager reconciles the Redis caches against PostgreSQL. Sessions are
// the only state cached long enough to go stale: once a session reaches a
// terminal status its chat backlog has no readers left and gets dropped.
type SyncManager struct {
	redisClient *redis.RedisClient
	db          *sql.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *sql.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// sessionStatus reads the current lifecycle status of one session.
func (sm *SyncManager) sessionStatus(sessionID string) (string, error) {
	var status string
	query := `SELECT status FROM gaming_sessions WHERE id = $1`
	if err := sm.db.QueryRow(query, sessionID).Scan(&status); err != nil {
		return "", fmt.Errorf("error reading session status: %v", err)
	}
	return status, nil
}

// CleanupSessionCache drops the Redis chat backlog of a session, but only
// after PostgreSQL confirms the session is really over. A session that is
// still scheduled or active keeps its cache.
func (sm *SyncManager) CleanupSessionCache(sessionID string) error {
	status, err := sm.sessionStatus(sessionID)
	if err != nil {
		return err
	}
	if status != "completed" && status != "cancelled" {
		return fmt.Errorf("session %s is still %s, not cleaning up", sessionID, status)
	}

	keys := []string{
		redis_utils.FormatSessionChatKey(sessionID),
	}
	if err := sm.redisClient.CleanupKeys(keys); err != nil {
		return fmt.Errorf("error cleaning up session %s: %v", sessionID, err)
	}
	return nil
}

// CleanupFinishedSessions sweeps every terminal session and drops its cached
// chat. Intended to run periodically from main.
func (sm *SyncManager) CleanupFinishedSessions() error {
	query := `SELECT id FROM gaming_sessions WHERE status IN ('completed', 'cancelled')`
	rows, err := sm.db.Query(query)
	if err != nil {
		return fmt.Errorf("error listing finished sessions: %v", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return fmt.Errorf("error scanning session id: %v", err)
		}
		keys = append(keys, redis_utils.FormatSessionChatKey(sessionID))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating finished sessions: %v", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := sm.redisClient.CleanupKeys(keys); err != nil {
		return fmt.Errorf("error cleaning up session caches: %v", err)
	}
	log.Printf("Cleaned up %d finished session caches", len(keys))
	return nil
}
