package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import (
	"fmt"
	"strings"
)

const notificationChannelPrefix = "notifications:user:"

func FormatPresenceKey(username string) string {
	return fmt.Sprintf("presence:%s", username)
}

func FormatSessionChatKey(sessionID string) string {
	return fmt.Sprintf("session:%s:chat", sessionID)
}

func FormatCompatibilityKey(username1, username2 string) string {
	// Order-independent so both directions hit the same entry
	if username2 < username1 {
		username1, username2 = username2, username1
	}
	return fmt.Sprintf("compat:%s:%s", username1, username2)
}

func FormatNotificationChannel(username string) string {
	return notificationChannelPrefix + username
}

// UsernameFromNotificationChannel is the inverse of
// FormatNotificationChannel. Returns "" for channels with another shape.
func UsernameFromNotificationChannel(channel string) string {
	if !strings.HasPrefix(channel, notificationChannelPrefix) {
		return ""
	}
	return strings.TrimPrefix(channel, notificationChannelPrefix)
}
