package config

import (
	"Playnet/services/redis"
	"log"
	"os"
)

// ConnectRedis connects to the Redis instance named by REDIS_URL.
func ConnectRedis() (*redis.RedisClient, error) {
	redisURI := os.Getenv("REDIS_URL")
	if redisURI == "" {
		redisURI = "localhost:6379"
	}
	redisClient, err := redis.InitRedis(redisURI, 0)
	if err != nil {
		log.Printf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
