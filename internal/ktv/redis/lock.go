// Package redis guards KTV room mutations against concurrent terminals.
// A room is locked for the duration of an open or checkout so two cashier
// stations cannot race the same session.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

func key(roomID string) string {
	return "room_lock:" + roomID
}

// LockRoom takes the room lock for the given holder token. Returns false when
// another terminal already holds it.
func (l *Lock) LockRoom(roomID, token string) (bool, error) {
	return l.Client.SetNX(context.Background(), key(roomID), token, l.TTL).Result()
}

// UnlockRoom releases the lock only if the token still owns it, so an expired
// holder cannot release a lock someone else has since taken.
func (l *Lock) UnlockRoom(roomID, token string) error {
	ctx := context.Background()
	val, err := l.Client.Get(ctx, key(roomID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != token {
		return fmt.Errorf("room %s is locked by another terminal", roomID)
	}
	_, err = l.Client.Del(ctx, key(roomID)).Result()
	return err
}
