package config

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	Ctx         = context.Background()
)

// InitRedis connects to Redis for the listing response cache. Caching is
// optional: with REDIS_ADD unset, or when the connection fails, a nil
// client is returned and the controllers skip the cache entirely.
func InitRedis() *redis.Client {
	redisOnce.Do(func() {
		addr := os.Getenv("REDIS_ADD")
		if addr == "" {
			log.Println("REDIS_ADD not set, listing cache disabled")
			return
		}

		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASS"),
			DB:       0,
		})

		if _, err := client.Ping(Ctx).Result(); err != nil {
			log.Printf("Failed to connect to Redis, listing cache disabled: %v", err)
			return
		}
		log.Println("Connected to Redis")
		redisClient = client
	})
	return redisClient
}
