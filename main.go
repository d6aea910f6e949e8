package main

import (
	"Playnet/config"
	"Playnet/middleware"
	"Playnet/routes"
	"Playnet/services/redis"
	"Playnet/services/socket_io"
	syncpkg "Playnet/sync"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// How often finished sessions get their Redis caches swept.
const cleanupInterval = 30 * time.Minute

// @title Playnet API
// @version 1.0
// @description Gin-Gonic server for the Playnet social gaming network
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.ConnectRedis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.CloseRedis(redisClient)

	// Periodic sweep of chat backlogs left behind by finished sessions
	syncManager := syncpkg.NewSyncManager(redisClient, sqlDB)
	go func() {
		for range time.Tick(cleanupInterval) {
			if err := syncManager.CleanupFinishedSessions(); err != nil {
				log.Printf("Session cache cleanup failed: %v", err)
			}
		}
	}()

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, redisClient)

	sio := &socket_io.MySocketServer{}
	sio.Start(r, gormDB, redisClient)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" && os.Getenv("USE_HTTPS") == "true" {
		port = "443"
	} else if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
