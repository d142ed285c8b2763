package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the shared client for the geocode cache; nil when REDIS_ADDR is
// unset or the server is unreachable, in which case callers skip caching.
var Redis *redis.Client

// InitRedis connects to redis if configured. Optional: the app runs without it.
func InitRedis() {
	addr := getEnv("REDIS_ADDR", "")
	if addr == "" {
		log.Println("REDIS_ADDR not set – geocode caching disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s (%v) – geocode caching disabled", addr, err)
		return
	}

	Redis = client
}
