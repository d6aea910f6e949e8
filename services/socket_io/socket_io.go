package socket_io

import (
	redis_models "Playnet/models/redis"
	"Playnet/services/redis"
	"Playnet/services/socket_io/handlers"
	"time"

	socketio_types "Playnet/services/socket_io/types"
	socketio_utils "Playnet/services/socket_io/utils"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the map, it panics otherwise
	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, _ := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		// Fresh connections start as plain online
		_ = redisClient.SetPlayerPresence(&redis_models.PlayerPresence{
			Username: username,
			Status:   redis_models.StatusOnline,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}, 2*time.Minute)

		// Join the socket.io room of a gaming session the user belongs to
		client.On("join_session", handlers.HandleJoinSession(redisClient, client, db, username))

		// Leave a session room
		client.On("leave_session", handlers.HandleLeaveSession(redisClient, client, db, username))

		// Persist and broadcast a chat message
		client.On("session_message", handlers.HandleSessionMessage(redisClient, client, db, username))

		// Presence status changes (online, afk, in_game)
		client.On("set_status", handlers.HandleSetStatus(redisClient, client, username))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(redisClient, username, (*socketio_types.SocketServer)(sio)))
	})

	// Push inbox events (invites, accepts, kicks) straight to whoever is
	// connected right now
	go handlers.ForwardNotifications(redisClient, (*socketio_types.SocketServer)(sio))

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
