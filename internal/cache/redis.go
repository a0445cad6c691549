// Package cache keeps a short Redis-backed tail of each room's chat so
// joining clients get recent history without a database round trip.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaditi930/Sketchify/internal/model"
)

const (
	historyLimit = 50
	historyTTL   = 24 * time.Hour
)

// RedisClient wraps the Redis client for chat history caching.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and verifies with a ping.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client}, nil
}

func chatKey(roomID string) string {
	return "room:" + roomID + ":chat"
}

// AddMessage appends a message to the room's tail, trims it to the
// history limit, and refreshes the TTL.
func (r *RedisClient) AddMessage(ctx context.Context, roomID string, msg *model.ChatMessage) error {
	key := chatKey(roomID)

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -historyLimit, -1)
	pipe.Expire(ctx, key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Redis] Failed to cache chat message: %v", err)
		return err
	}

	return nil
}

// RecentMessages returns up to count cached messages, oldest first.
func (r *RedisClient) RecentMessages(ctx context.Context, roomID string, count int64) ([]model.ChatMessage, error) {
	results, err := r.client.LRange(ctx, chatKey(roomID), -count, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]model.ChatMessage, 0, len(results))
	for _, data := range results {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}

	return messages, nil
}

// MessageCount returns the cached tail length for a room.
func (r *RedisClient) MessageCount(ctx context.Context, roomID string) (int64, error) {
	return r.client.LLen(ctx, chatKey(roomID)).Result()
}

// DeleteRoom drops a room's cached chat tail.
func (r *RedisClient) DeleteRoom(ctx context.Context, roomID string) error {
	return r.client.Del(ctx, chatKey(roomID)).Err()
}

// Health checks if Redis is reachable.
func (r *RedisClient) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}
