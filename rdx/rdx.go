// Package rdx wraps the redis connection used as opaque session
// storage for cached itineraries.
package rdx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a small JSON key-value layer over redis.
type Store struct {
	conn *redis.Client
}

// Connect builds the redis client from REDIS_URL / REDIS_PASSWORD.
func Connect() *Store {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s: %v", addr, err)
	}
	return &Store{conn: conn}
}

// SetJSON marshals v and stores it under key with the given TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.conn.Set(ctx, key, b, ttl).Err()
}

// GetJSON loads key into out. A missing key is an error.
func (s *Store) GetJSON(ctx context.Context, key string, out any) error {
	b, err := s.conn.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.conn.Del(ctx, key).Err()
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
