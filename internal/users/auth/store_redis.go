// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/famvault/internal/platform/constants"
)

// RedisCodeThrottle implements [CodeThrottle] with an expiring marker key.
type RedisCodeThrottle struct {
	client   redis.UniversalClient
	cooldown time.Duration
}

// NewCodeThrottle creates a Redis-backed CodeThrottle.
func NewCodeThrottle(client redis.UniversalClient, cooldown time.Duration) *RedisCodeThrottle {
	return &RedisCodeThrottle{client: client, cooldown: cooldown}
}

/*
Acquire claims the send slot with SET NX.

Description: If the marker already exists the remaining TTL is reported so
the user can be told how long to wait.
*/
func (throttle *RedisCodeThrottle) Acquire(context context.Context, email, purpose string) (time.Duration, error) {
	if throttle.cooldown <= 0 {
		return 0, nil
	}

	key := cooldownKey(email, purpose)

	claimed, err := throttle.client.SetNX(context, key, 1, throttle.cooldown).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_code_throttle_set_failed: %w", err)
	}
	if claimed {
		return 0, nil
	}

	remaining, err := throttle.client.PTTL(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_code_throttle_ttl_failed: %w", err)
	}

	// The key expired between SETNX and PTTL, or has no TTL at all.
	if remaining <= 0 {
		return throttle.cooldown, nil
	}
	return remaining, nil
}

// Release deletes the marker key. A missing key is not an error.
func (throttle *RedisCodeThrottle) Release(context context.Context, email, purpose string) error {
	if throttle.cooldown <= 0 {
		return nil
	}

	if err := throttle.client.Del(context, cooldownKey(email, purpose)).Err(); err != nil {
		return fmt.Errorf("redis_code_throttle_release_failed: %w", err)
	}
	return nil
}

func cooldownKey(email, purpose string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixOTPCooldown, purpose, email)
}
