package session

import (
	fiberredis "github.com/gofiber/storage/redis/v3"
	goredis "github.com/redis/go-redis/v9"
)

// NewRedis wraps an existing go-redis client in the fiber storage adapter.
func NewRedis(rdb *goredis.Client) Backend {
	return fiberredis.NewFromConnection(rdb)
}
