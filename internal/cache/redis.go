package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/qurum/pitchbooking/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL: slotsTTL,
	}
}

// AcquireSlotLocks takes a short-lived lock on every requested slot. It is
// all-or-nothing: if any slot is already locked by another request, the
// locks taken so far are released and ok is false.
func (c *RedisCache) AcquireSlotLocks(ctx context.Context, slots []string, ttl time.Duration) (bool, error) {
	var held []string
	for _, slot := range slots {
		ok, err := c.client.SetNX(ctx, slotLockKey(slot), "locked", ttl).Result()
		if err != nil {
			_ = c.ReleaseSlotLocks(ctx, held)
			return false, err
		}
		if !ok {
			_ = c.ReleaseSlotLocks(ctx, held)
			return false, nil
		}
		held = append(held, slot)
	}
	return true, nil
}

func (c *RedisCache) ReleaseSlotLocks(ctx context.Context, slots []string) error {
	if len(slots) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slots))
	for _, slot := range slots {
		keys = append(keys, slotLockKey(slot))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) GetBookedSlots(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, bookedSlotsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetBookedSlots(ctx context.Context, slots []string) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookedSlotsKey(), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateBookedSlots(ctx context.Context) error {
	return c.client.Del(ctx, bookedSlotsKey()).Err()
}

func bookedSlotsKey() string {
	return "cache:booked_slots"
}

func slotLockKey(slot string) string {
	return "lock:slot:" + slot
}
