package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const presenceKey = "messenger:online"

// Presence is the online set: a Redis hash of user id to open connection
// count, shared by every service instance. A user is online while at least
// one socket is connected.
type Presence struct {
	Redis *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{Redis: client}
}

func (p *Presence) Connected(ctx context.Context, userID string) error {
	return p.Redis.HIncrBy(ctx, presenceKey, userID, 1).Err()
}

func (p *Presence) Disconnected(ctx context.Context, userID string) error {
	remaining, err := p.Redis.HIncrBy(ctx, presenceKey, userID, -1).Result()
	if err != nil {
		return err
	}
	if remaining <= 0 {
		return p.Redis.HDel(ctx, presenceKey, userID).Err()
	}
	return nil
}

// Online reports which of the given users currently hold a connection.
// A Redis outage degrades to everyone-offline rather than an error: the
// roster is still usable without presence dots.
func (p *Presence) Online(ctx context.Context, userIDs []string) map[string]bool {
	online := map[string]bool{}
	if len(userIDs) == 0 {
		return online
	}

	counts, err := p.Redis.HMGet(ctx, presenceKey, userIDs...).Result()
	if err != nil {
		return online
	}
	for i, raw := range counts {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			online[userIDs[i]] = true
		}
	}
	return online
}
