package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrdaaan1/cofounder-ai/config"
)

// OpenRedis connects to Redis for the transcript mirror. A missing Redis is
// not fatal: the app degrades to in-memory transcripts only.
func OpenRedis(ctx context.Context, cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, transcript mirror disabled: %v", cfg.Addr, err)
		client.Close()
		return nil
	}
	return client
}
