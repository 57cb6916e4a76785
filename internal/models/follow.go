// Package models contains data structures for the application's domain models.
package models

import "time"

// Follow is a directed follow edge. A (follower, followee) pair exists at
// most once; the unique index is what makes Follow idempotent.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index:idx_follows_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// TierSubscription is a subscription edge from a user to a tier.
type TierSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tier_subscriptions_pair" json:"user_id"`
	TierID    uint      `gorm:"not null;uniqueIndex:idx_tier_subscriptions_pair;index:idx_tier_subscriptions_tier" json:"tier_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (TierSubscription) TableName() string {
	return "tier_subscriptions"
}
