package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationChannelRoundTrip(t *testing.T) {
	channel := FormatNotificationChannel("zoe")
	assert.Equal(t, "notifications:user:zoe", channel)
	assert.Equal(t, "zoe", UsernameFromNotificationChannel(channel))
}

func TestUsernameFromForeignChannel(t *testing.T) {
	assert.Equal(t, "", UsernameFromNotificationChannel("session:abc123:chat"))
	assert.Equal(t, "", UsernameFromNotificationChannel(""))
}

func TestCompatibilityKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, FormatCompatibilityKey("zoe", "adam"), FormatCompatibilityKey("adam", "zoe"))
}
