package socketio_types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zishang520/socket.io/v2/socket"
)

func TestConnectionMap(t *testing.T) {
	server := &SocketServer{UserConnections: make(map[string]*socket.Socket)}

	_, connected := server.GetConnection("zoe")
	assert.False(t, connected)

	server.AddConnection("zoe", nil)
	_, connected = server.GetConnection("zoe")
	assert.True(t, connected)

	server.RemoveConnection("zoe")
	_, connected = server.GetConnection("zoe")
	assert.False(t, connected)
}
