package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	CreatorTiersKeyPrefix = "creator:%d:tiers"
)

const (
	UserTTL         = 5 * time.Minute
	CreatorTiersTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CreatorTiersKey(creatorID uint) string {
	return fmt.Sprintf(CreatorTiersKeyPrefix, creatorID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCreatorTiers(ctx context.Context, creatorID uint) {
	Invalidate(ctx, CreatorTiersKey(creatorID))
}
