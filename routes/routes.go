package routes

import (
	"Playnet/controllers"
	"Playnet/middleware"
	"Playnet/services/catalog"
	"Playnet/services/notifications"
	"Playnet/services/redis"
	utils "Playnet/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	notifier := notifications.NewNotifier(redisClient)
	catalogClient := catalog.NewFromEnv()

	// utils global
	router.Use(utils.ErrorHandler())
	router.Use(utils.Logger())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/signup", controllers.SignUp(db))
	api.POST("/login", controllers.Login(db))
	api.POST("/logout", controllers.Logout)

	// Public profile surface
	api.GET("/users", controllers.SearchUsers(db))
	api.GET("/users/:username", controllers.GetUserPublicInfo(db))
	api.GET("/users/:username/library", controllers.ListGameRecords(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/me", controllers.GetUserPrivateInfo(db))
		authentication.PATCH("/me", controllers.UpdateUserInfo(db))
		authentication.PUT("/gamertags", controllers.SetGamertag(db))
		authentication.DELETE("/gamertags/:platform", controllers.DeleteGamertag(db))

		// Friend graph
		authentication.GET("/friends", controllers.ListFriends(db))
		authentication.DELETE("/friends/:username", controllers.RemoveFriend(db))
		authentication.POST("/connections", controllers.SendConnectionRequest(db, notifier))
		authentication.POST("/connections/:username/accept", controllers.AcceptConnectionRequest(db, notifier))
		authentication.POST("/connections/:username/decline", controllers.DeclineConnectionRequest(db))
		authentication.POST("/connections/:username/block", controllers.BlockUser(db))
		authentication.DELETE("/connections/:username", controllers.CancelConnectionRequest(db))

		// Game library
		authentication.POST("/library", controllers.AddGameRecord(db))
		authentication.PATCH("/library/:id", controllers.UpdateGameRecord(db))
		authentication.DELETE("/library/:id", controllers.DeleteGameRecord(db))

		// Catalog search and compatibility
		authentication.GET("/catalog", controllers.SearchCatalog(catalogClient))
		authentication.GET("/compatibility/:username", controllers.GetCompatibilityReport(db, redisClient))

		// Gaming sessions
		authentication.POST("/sessions", controllers.CreateSession(db, notifier))
		authentication.GET("/sessions", controllers.ListSessions(db))
		authentication.GET("/sessions/:id", controllers.GetSessionInfo(db))
		authentication.PATCH("/sessions/:id", controllers.UpdateSession(db))
		authentication.POST("/sessions/:id/start", controllers.StartSession(db))
		authentication.POST("/sessions/:id/complete", controllers.CompleteSession(db))
		authentication.POST("/sessions/:id/cancel", controllers.CancelSession(db, notifier))
		authentication.POST("/sessions/:id/join", controllers.JoinSession(db))
		authentication.POST("/sessions/:id/leave", controllers.LeaveSession(db))
		authentication.DELETE("/sessions/:id/participants/:username", controllers.KickParticipant(db, notifier))
		authentication.POST("/sessions/:id/invitations", controllers.InviteToSession(db, notifier))

		// Session chat
		authentication.POST("/sessions/:id/messages", controllers.PostSessionMessage(db, redisClient))
		authentication.GET("/sessions/:id/messages", controllers.ListSessionMessages(db, redisClient))
		authentication.PATCH("/sessions/:id/messages/:messageID", controllers.EditSessionMessage(db, redisClient))
		authentication.DELETE("/sessions/:id/messages/:messageID", controllers.DeleteSessionMessage(db, redisClient))

		// Groups
		authentication.POST("/groups", controllers.CreateGroup(db))
		authentication.GET("/groups", controllers.ListGroups(db))
		authentication.GET("/groups/:id", controllers.GetGroupInfo(db))
		authentication.DELETE("/groups/:id", controllers.DeleteGroup(db))
		authentication.POST("/groups/:id/invitations", controllers.InviteToGroup(db, notifier))
		authentication.POST("/groups/:id/leave", controllers.LeaveGroup(db))
		authentication.DELETE("/groups/:id/members/:username", controllers.KickGroupMember(db))

		// Inbox
		authentication.GET("/inbox/connection-requests", controllers.GetAllReceivedConnectionRequests(db))
		authentication.GET("/inbox/sent-connection-requests", controllers.GetAllSentConnectionRequests(db))
		authentication.GET("/inbox/session-invitations", controllers.GetAllReceivedSessionInvitations(db))
		authentication.POST("/inbox/session-invitations/:id/accept", controllers.AcceptSessionInvitation(db))
		authentication.POST("/inbox/session-invitations/:id/decline", controllers.DeclineSessionInvitation(db))
		authentication.DELETE("/inbox/session-invitations/:id", controllers.CancelSessionInvitation(db))
		authentication.GET("/inbox/group-invitations", controllers.GetAllReceivedGroupInvitations(db))
		authentication.POST("/inbox/group-invitations/:id/accept", controllers.AcceptGroupInvitation(db))
		authentication.POST("/inbox/group-invitations/:id/decline", controllers.DeclineGroupInvitation(db))
		authentication.DELETE("/inbox/group-invitations/:id", controllers.CancelGroupInvitation(db))
	}
}
