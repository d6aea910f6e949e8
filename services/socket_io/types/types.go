package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer bundles the socket.io server with a username -> socket map,
// so handlers can address one specific client directly (notification
// delivery, kicks) instead of going through a room.
type SocketServer struct {
	Sio_server      *socket.Server
	UserConnections map[string]*socket.Socket
	mutex           sync.RWMutex
}

// AddConnection registers the socket a user is currently reachable on. A
// reconnect overwrites the previous entry.
func (s *SocketServer) AddConnection(username string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = client
}

// RemoveConnection forgets a user's socket on disconnect.
func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
}

// GetConnection returns the live socket of a user, if they have one open.
func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	client, connected := s.UserConnections[username]
	return client, connected
}
