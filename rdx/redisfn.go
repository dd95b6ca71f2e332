package rdx

import (
	"log"
	"os"
	"time"

	"cropshare/globals"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxSetTTL(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxDel(key string) (int64, error) {
	return Conn.Del(globals.Ctx, key).Result()
}

// InvalidateCropCaches drops the cached catalogue and the cached listing
// for one crop. Safe to call with an empty id.
func InvalidateCropCaches(cropID string) {
	if _, err := RdxDel("crop_catalogue"); err != nil {
		log.Printf("cache invalidation failed for catalogue: %v", err)
	}
	if cropID != "" {
		if _, err := RdxDel("crop:" + cropID); err != nil {
			log.Printf("cache invalidation failed for crop %s: %v", cropID, err)
		}
	}
}
