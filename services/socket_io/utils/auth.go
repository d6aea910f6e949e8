package socketio_utils

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a freshly connected socket from its
// handshake auth data and resolves the account behind the token. Failed
// checks emit an error to the client and disconnect it.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (bool, string, string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		log.Printf("[SOCKET-AUTH-ERROR] Missing handshake auth data, socket %s", client.Id())
		client.Emit("error", gin.H{"error": "Missing authentication data"})
		client.Disconnect(true)
		return false, "", ""
	}

	email, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Printf("[SOCKET-AUTH-ERROR] Invalid token, socket %s: %v", client.Id(), err)
		client.Emit("error", gin.H{"error": "Invalid authentication token"})
		client.Disconnect(true)
		return false, "", ""
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Printf("[SOCKET-AUTH-ERROR] Unknown account %s, socket %s", email, client.Id())
		client.Emit("error", gin.H{"error": "Unknown account"})
		client.Disconnect(true)
		return false, "", ""
	}

	return true, user.ProfileUsername, email
}
